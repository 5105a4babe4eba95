package workspace

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

const PlanFree = "free"

type Workspace struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Slug        string         `gorm:"not null;column:slug;uniqueIndex:idx_workspaces_slug" json:"slug"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id" json:"owner_id"`
	Settings    datatypes.JSON `gorm:"column:settings" json:"settings"`
	Plan        string         `gorm:"not null;default:'free';column:plan" json:"plan"`

	Members []Member `gorm:"foreignKey:WorkspaceID;references:ID" json:"members"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Workspace) TableName() string { return "workspaces" }

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if len(w.Settings) == 0 {
		w.Settings = datatypes.JSON("{}")
	}
	if w.Plan == "" {
		w.Plan = PlanFree
	}
	return nil
}

// RoleOf returns the member role of userID, or "" if not a member.
func (w *Workspace) RoleOf(userID uuid.UUID) Role {
	if w == nil {
		return ""
	}
	for _, m := range w.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}
