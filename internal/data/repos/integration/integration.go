package integration

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type IntegrationRepo interface {
	// Upsert inserts or refreshes the (workspace, user, provider) row and returns the stored row.
	Upsert(dbc dbctx.Context, in *types.Integration) (*types.Integration, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Integration, error)
	ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Integration, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error
}

type integrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIntegrationRepo(db *gorm.DB, baseLog *logger.Logger) IntegrationRepo {
	return &integrationRepo{db: db, log: baseLog.With("repo", "IntegrationRepo")}
}

func (r *integrationRepo) Upsert(dbc dbctx.Context, in *types.Integration) (*types.Integration, error) {
	in.UpdatedAt = time.Now().UTC()
	err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "workspace_id"}, {Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "scopes", "credentials", "account_email", "last_error", "demo", "updated_at",
		}),
	}).Create(in).Error
	if err != nil {
		return nil, err
	}
	var out types.Integration
	if err := dbc.DB(r.db).
		Where("workspace_id = ? AND user_id = ? AND provider = ?", in.WorkspaceID, in.UserID, in.Provider).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *integrationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Integration, error) {
	var out types.Integration
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *integrationRepo) ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Integration, error) {
	out := []*types.Integration{}
	if err := dbc.DB(r.db).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *integrationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Integration{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *integrationRepo) DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("workspace_id = ?", workspaceID).
		Delete(&types.Integration{}).Error
}
