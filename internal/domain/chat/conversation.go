package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
	ConversationDeleted  ConversationStatus = "deleted"
)

func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationActive, ConversationArchived, ConversationDeleted:
		return true
	}
	return false
}

const DefaultConversationTitle = "New Conversation"

type Conversation struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID          `gorm:"type:uuid;not null;index;column:workspace_id" json:"workspace_id"`
	AssistantID uuid.UUID          `gorm:"type:uuid;not null;index;column:assistant_id" json:"assistant_id"`
	UserID      uuid.UUID          `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title       string             `gorm:"not null;column:title" json:"title"`
	Status      ConversationStatus `gorm:"not null;index;column:status" json:"status"`
	Metadata    datatypes.JSON     `gorm:"column:metadata" json:"metadata"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null;index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Title == "" {
		c.Title = DefaultConversationTitle
	}
	if c.Status == "" {
		c.Status = ConversationActive
	}
	if len(c.Metadata) == 0 {
		c.Metadata = datatypes.JSON("{}")
	}
	return nil
}
