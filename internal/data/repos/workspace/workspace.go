package workspace

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type WorkspaceRepo interface {
	Create(dbc dbctx.Context, ws *types.Workspace) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Workspace, error)
	ListByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Workspace, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type workspaceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkspaceRepo(db *gorm.DB, baseLog *logger.Logger) WorkspaceRepo {
	return &workspaceRepo{db: db, log: baseLog.With("repo", "WorkspaceRepo")}
}

func (r *workspaceRepo) Create(dbc dbctx.Context, ws *types.Workspace) error {
	return dbc.DB(r.db).Omit("Members").Create(ws).Error
}

// GetByID returns nil, nil when missing. Members are preloaded.
func (r *workspaceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Workspace, error) {
	var ws types.Workspace
	err := dbc.DB(r.db).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Where("id = ?", id).
		First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) ListByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Workspace, error) {
	out := []*types.Workspace{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workspaceRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Workspace{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *workspaceRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Workspace{}).Error
}
