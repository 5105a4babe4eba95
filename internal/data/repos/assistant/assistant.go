package assistant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type AssistantRepo interface {
	Create(dbc dbctx.Context, a *types.Assistant) error
	GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Assistant, error)
	ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Assistant, error)
	UpdateFields(dbc dbctx.Context, workspaceID, id uuid.UUID, updates map[string]any) error
	IncrementUsage(dbc dbctx.Context, id uuid.UUID) error
	Delete(dbc dbctx.Context, workspaceID, id uuid.UUID) (int64, error)
	DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error
}

type assistantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssistantRepo(db *gorm.DB, baseLog *logger.Logger) AssistantRepo {
	return &assistantRepo{db: db, log: baseLog.With("repo", "AssistantRepo")}
}

func (r *assistantRepo) Create(dbc dbctx.Context, a *types.Assistant) error {
	return dbc.DB(r.db).Create(a).Error
}

// GetByID is scoped to the workspace; an assistant from another workspace reads as missing.
func (r *assistantRepo) GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Assistant, error) {
	var a types.Assistant
	q := dbc.DB(r.db).Where("id = ?", id)
	if workspaceID != uuid.Nil {
		q = q.Where("workspace_id = ?", workspaceID)
	}
	err := q.First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assistantRepo) ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Assistant, error) {
	out := []*types.Assistant{}
	if err := dbc.DB(r.db).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assistantRepo) UpdateFields(dbc dbctx.Context, workspaceID, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Assistant{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Updates(updates).Error
}

func (r *assistantRepo) IncrementUsage(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).
		Model(&types.Assistant{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
}

func (r *assistantRepo) Delete(dbc dbctx.Context, workspaceID, id uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Delete(&types.Assistant{})
	return res.RowsAffected, res.Error
}

func (r *assistantRepo) DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("workspace_id = ?", workspaceID).
		Delete(&types.Assistant{}).Error
}
