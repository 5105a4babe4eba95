package workspace

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Member struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;column:workspace_id;uniqueIndex:idx_workspace_member,priority:1" json:"-"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;column:user_id;index;uniqueIndex:idx_workspace_member,priority:2" json:"user_id"`
	Role        Role      `gorm:"not null;column:role" json:"role"`
	JoinedAt    time.Time `gorm:"not null;column:joined_at" json:"joined_at"`
}

func (Member) TableName() string { return "workspace_members" }

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}
