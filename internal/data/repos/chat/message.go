package chat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, m *types.Message) error
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error)
	CountByConversationIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	DeleteByConversationIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, m *types.Message) error {
	return dbc.DB(r.db).Create(m).Error
}

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error) {
	out := []*types.Message{}
	if err := dbc.DB(r.db).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) CountByConversationIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := dbc.DB(r.db).
		Model(&types.Message{}).
		Where("conversation_id IN ?", ids).
		Count(&n).Error
	return n, err
}

func (r *messageRepo) DeleteByConversationIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("conversation_id IN ?", ids).Delete(&types.Message{}).Error
}
