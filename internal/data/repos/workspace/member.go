package workspace

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type MemberRepo interface {
	Create(dbc dbctx.Context, m *types.WorkspaceMember) error
	Get(dbc dbctx.Context, workspaceID, userID uuid.UUID) (*types.WorkspaceMember, error)
	WorkspaceIDsForUser(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Delete(dbc dbctx.Context, workspaceID, userID uuid.UUID) (int64, error)
	DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error
}

type memberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
	return &memberRepo{db: db, log: baseLog.With("repo", "WorkspaceMemberRepo")}
}

func (r *memberRepo) Create(dbc dbctx.Context, m *types.WorkspaceMember) error {
	return dbc.DB(r.db).Create(m).Error
}

func (r *memberRepo) Get(dbc dbctx.Context, workspaceID, userID uuid.UUID) (*types.WorkspaceMember, error) {
	var m types.WorkspaceMember
	err := dbc.DB(r.db).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepo) WorkspaceIDsForUser(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := dbc.DB(r.db).
		Model(&types.WorkspaceMember{}).
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Pluck("workspace_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *memberRepo) Delete(dbc dbctx.Context, workspaceID, userID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&types.WorkspaceMember{})
	return res.RowsAffected, res.Error
}

func (r *memberRepo) DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("workspace_id = ?", workspaceID).
		Delete(&types.WorkspaceMember{}).Error
}
