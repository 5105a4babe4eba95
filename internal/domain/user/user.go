package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string    `gorm:"not null;column:email;uniqueIndex:idx_users_email" json:"email"`
	Password        string    `gorm:"not null;column:password" json:"-"`
	Name            string    `gorm:"not null;column:name" json:"name"`
	AvatarURL       string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	AvatarBucketKey string    `gorm:"column:avatar_bucket_key" json:"-"`

	// Workspaces is the membership list, filled from workspace_members on read.
	Workspaces []uuid.UUID `gorm:"-" json:"workspaces"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasWorkspace reports whether id is in the user's membership list.
func (u *User) HasWorkspace(id uuid.UUID) bool {
	if u == nil {
		return false
	}
	for _, w := range u.Workspaces {
		if w == id {
			return true
		}
	}
	return false
}
