package integration

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Provider string

const ProviderGoogleDrive Provider = "google_drive"

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

const DefaultSyncIntervalMinutes = 60

type Integration struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID  uuid.UUID      `gorm:"type:uuid;not null;column:workspace_id;uniqueIndex:idx_integration_owner_provider,priority:1" json:"workspace_id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_integration_owner_provider,priority:2" json:"user_id"`
	Provider     Provider       `gorm:"not null;column:provider;uniqueIndex:idx_integration_owner_provider,priority:3" json:"provider"`
	Status       Status         `gorm:"not null;column:status" json:"status"`
	Scopes       datatypes.JSON `gorm:"column:scopes" json:"scopes"`
	Credentials  datatypes.JSON `gorm:"column:credentials" json:"-"`
	AccountEmail string         `gorm:"column:account_email" json:"account_email,omitempty"`

	// SyncIntervalMinutes is stored for clients; nothing schedules on it.
	SyncIntervalMinutes int        `gorm:"not null;default:60;column:sync_interval_minutes" json:"sync_interval_minutes"`
	LastSyncedAt        *time.Time `gorm:"column:last_synced_at" json:"last_synced_at,omitempty"`
	LastError           string     `gorm:"column:last_error" json:"last_error,omitempty"`
	Demo                bool       `gorm:"not null;default:false;column:demo" json:"demo"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Integration) TableName() string { return "integrations" }

func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusConnected
	}
	if i.SyncIntervalMinutes <= 0 {
		i.SyncIntervalMinutes = DefaultSyncIntervalMinutes
	}
	if len(i.Scopes) == 0 {
		i.Scopes = datatypes.JSON("[]")
	}
	if len(i.Credentials) == 0 {
		i.Credentials = datatypes.JSON("{}")
	}
	return nil
}
