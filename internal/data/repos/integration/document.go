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

type DocumentRepo interface {
	// Upsert writes docs keyed on (workspace_id, external_id) and returns the stored rows.
	Upsert(dbc dbctx.Context, docs []*types.Document) ([]*types.Document, error)
	GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Document, error)
	ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Document, error)
	DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Upsert(dbc dbctx.Context, docs []*types.Document) ([]*types.Document, error) {
	out := []*types.Document{}
	if len(docs) == 0 {
		return out, nil
	}
	now := time.Now().UTC()
	for _, d := range docs {
		d.UpdatedAt = now
	}
	if err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "workspace_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"integration_id", "title", "content", "source_type", "mime_type", "url", "last_modified", "updated_at",
		}),
	}).Create(&docs).Error; err != nil {
		return nil, err
	}

	// Conflicting rows keep their original id, so read back what is stored.
	byWorkspace := map[uuid.UUID][]string{}
	for _, d := range docs {
		byWorkspace[d.WorkspaceID] = append(byWorkspace[d.WorkspaceID], d.ExternalID)
	}
	for ws, ext := range byWorkspace {
		var rows []*types.Document
		if err := dbc.DB(r.db).
			Where("workspace_id = ? AND external_id IN ?", ws, ext).
			Order("title ASC").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (r *documentRepo) GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Document, error) {
	var d types.Document
	err := dbc.DB(r.db).Where("id = ? AND workspace_id = ?", id, workspaceID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByWorkspace omits content; fetch a single document for its text.
func (r *documentRepo) ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Document, error) {
	out := []*types.Document{}
	if err := dbc.DB(r.db).
		Omit("content").
		Where("workspace_id = ?", workspaceID).
		Order("updated_at DESC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) DeleteByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("workspace_id = ?", workspaceID).
		Delete(&types.Document{}).Error
}
