package domain

import (
	"github.com/versatil/versatil-backend/internal/domain/assistant"
	"github.com/versatil/versatil-backend/internal/domain/auth"
	"github.com/versatil/versatil-backend/internal/domain/chat"
	"github.com/versatil/versatil-backend/internal/domain/integration"
	"github.com/versatil/versatil-backend/internal/domain/user"
	"github.com/versatil/versatil-backend/internal/domain/workspace"
)

type User = user.User
type UserIdentity = auth.UserIdentity

type Workspace = workspace.Workspace
type WorkspaceMember = workspace.Member
type WorkspaceRole = workspace.Role

const (
	RoleOwner  = workspace.RoleOwner
	RoleAdmin  = workspace.RoleAdmin
	RoleMember = workspace.RoleMember
	RoleGuest  = workspace.RoleGuest
)

type Assistant = assistant.Assistant
type AssistantType = assistant.Type
type Provider = assistant.Provider

const (
	ProviderOpenAI    = assistant.ProviderOpenAI
	ProviderAnthropic = assistant.ProviderAnthropic
)

type Conversation = chat.Conversation
type ConversationStatus = chat.ConversationStatus
type Message = chat.Message
type MessageRole = chat.Role

const (
	ConversationActive   = chat.ConversationActive
	ConversationArchived = chat.ConversationArchived
	ConversationDeleted  = chat.ConversationDeleted

	MessageRoleUser      = chat.RoleUser
	MessageRoleAssistant = chat.RoleAssistant
	MessageRoleSystem    = chat.RoleSystem
)

type Integration = integration.Integration
type IntegrationStatus = integration.Status
type Document = integration.Document
type DocumentSourceType = integration.SourceType

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserIdentity{},
		&Workspace{},
		&WorkspaceMember{},
		&Assistant{},
		&Conversation{},
		&Message{},
		&Integration{},
		&Document{},
	}
}
