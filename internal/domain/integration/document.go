package integration

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SourceType string

const (
	SourceGoogleDoc   SourceType = "google_doc"
	SourceGoogleSheet SourceType = "google_sheet"
	SourcePDF         SourceType = "pdf"
)

type Document struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID   uuid.UUID  `gorm:"type:uuid;not null;column:workspace_id;uniqueIndex:idx_documents_external,priority:1" json:"workspace_id"`
	IntegrationID uuid.UUID  `gorm:"type:uuid;not null;index;column:integration_id" json:"integration_id"`
	ExternalID    string     `gorm:"not null;column:external_id;uniqueIndex:idx_documents_external,priority:2" json:"external_id"`
	Title         string     `gorm:"not null;column:title" json:"title"`
	Content       string     `gorm:"column:content" json:"content,omitempty"`
	SourceType    SourceType `gorm:"not null;column:source_type" json:"source_type"`
	MimeType      string     `gorm:"column:mime_type" json:"mime_type"`
	URL           string     `gorm:"column:url" json:"url,omitempty"`
	LastModified  *time.Time `gorm:"column:last_modified" json:"last_modified,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
