package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message rows are append-only.
type Message struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1;column:conversation_id" json:"conversation_id"`
	Role           Role           `gorm:"not null;column:role" json:"role"`
	Content        string         `gorm:"not null;column:content" json:"content"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_messages_conversation_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if len(m.Metadata) == 0 {
		m.Metadata = datatypes.JSON("{}")
	}
	return nil
}
