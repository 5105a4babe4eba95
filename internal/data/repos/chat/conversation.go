package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, c *types.Conversation) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	// ListByWorkspace returns the user's conversations newest-updated first,
	// skipping rows whose status equals exclude (pass "" to keep all).
	ListByWorkspace(dbc dbctx.Context, workspaceID, userID uuid.UUID, exclude types.ConversationStatus) ([]*types.Conversation, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Touch(dbc dbctx.Context, id uuid.UUID, at time.Time) error
	IDsByAssistant(dbc dbctx.Context, assistantID uuid.UUID) ([]uuid.UUID, error)
	IDsByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]uuid.UUID, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, c *types.Conversation) error {
	return dbc.DB(r.db).Create(c).Error
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	var c types.Conversation
	err := dbc.DB(r.db).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepo) ListByWorkspace(dbc dbctx.Context, workspaceID, userID uuid.UUID, exclude types.ConversationStatus) ([]*types.Conversation, error) {
	out := []*types.Conversation{}
	q := dbc.DB(r.db).Where("workspace_id = ? AND user_id = ?", workspaceID, userID)
	if exclude != "" {
		q = q.Where("status <> ?", exclude)
	}
	if err := q.Order("updated_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *conversationRepo) Touch(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at.UTC()).Error
}

func (r *conversationRepo) IDsByAssistant(dbc dbctx.Context, assistantID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("assistant_id = ?", assistantID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *conversationRepo) IDsByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("workspace_id = ?", workspaceID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *conversationRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Conversation{}).Error
}
