package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Type string

const (
	TypeChat     Type = "chat"
	TypeWorkflow Type = "workflow"
	TypeSearch   Type = "search"
	TypeAnalysis Type = "analysis"
)

func (t Type) Valid() bool {
	switch t {
	case TypeChat, TypeWorkflow, TypeSearch, TypeAnalysis:
		return true
	}
	return false
}

const (
	DefaultModel        = "gpt-4"
	DefaultSystemPrompt = "You are a helpful AI assistant."
)

type Assistant struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID  uuid.UUID      `gorm:"type:uuid;not null;index;column:workspace_id" json:"workspace_id"`
	Name         string         `gorm:"not null;column:name" json:"name"`
	Description  string         `gorm:"column:description" json:"description,omitempty"`
	AvatarURL    string         `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Type         Type           `gorm:"not null;column:type" json:"type"`
	Model        string         `gorm:"not null;column:model" json:"model"`
	Provider     Provider       `gorm:"not null;column:provider" json:"provider"`
	SystemPrompt string         `gorm:"column:system_prompt" json:"system_prompt"`
	Instructions string         `gorm:"column:instructions" json:"instructions,omitempty"`
	Tools        datatypes.JSON `gorm:"column:tools" json:"tools"`
	DataSources  datatypes.JSON `gorm:"column:data_sources" json:"data_sources"`
	Settings     datatypes.JSON `gorm:"column:settings" json:"settings"`
	CreatedBy    uuid.UUID      `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	IsPublic     bool           `gorm:"not null;default:false;column:is_public" json:"is_public"`
	UsageCount   int64          `gorm:"not null;default:0;column:usage_count" json:"usage_count"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (Assistant) TableName() string { return "assistants" }

func (a *Assistant) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Type == "" {
		a.Type = TypeChat
	}
	if a.Model == "" {
		a.Model = DefaultModel
	}
	if a.Provider == "" {
		a.Provider = ResolveProvider(a.Model)
	}
	if a.SystemPrompt == "" {
		a.SystemPrompt = DefaultSystemPrompt
	}
	if len(a.Tools) == 0 {
		a.Tools = datatypes.JSON("[]")
	}
	if len(a.DataSources) == 0 {
		a.DataSources = datatypes.JSON("[]")
	}
	if len(a.Settings) == 0 {
		a.Settings = datatypes.JSON("{}")
	}
	return nil
}
