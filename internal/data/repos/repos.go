package repos

import (
	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/repos/assistant"
	"github.com/versatil/versatil-backend/internal/data/repos/auth"
	"github.com/versatil/versatil-backend/internal/data/repos/chat"
	"github.com/versatil/versatil-backend/internal/data/repos/integration"
	"github.com/versatil/versatil-backend/internal/data/repos/user"
	"github.com/versatil/versatil-backend/internal/data/repos/workspace"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserIdentityRepo = auth.UserIdentityRepo

type WorkspaceRepo = workspace.WorkspaceRepo
type WorkspaceMemberRepo = workspace.MemberRepo

type AssistantRepo = assistant.AssistantRepo

type ConversationRepo = chat.ConversationRepo
type MessageRepo = chat.MessageRepo

type IntegrationRepo = integration.IntegrationRepo
type DocumentRepo = integration.DocumentRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewUserIdentityRepo(db *gorm.DB, log *logger.Logger) UserIdentityRepo {
	return auth.NewUserIdentityRepo(db, log)
}
func NewWorkspaceRepo(db *gorm.DB, log *logger.Logger) WorkspaceRepo {
	return workspace.NewWorkspaceRepo(db, log)
}
func NewWorkspaceMemberRepo(db *gorm.DB, log *logger.Logger) WorkspaceMemberRepo {
	return workspace.NewMemberRepo(db, log)
}
func NewAssistantRepo(db *gorm.DB, log *logger.Logger) AssistantRepo {
	return assistant.NewAssistantRepo(db, log)
}
func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, log)
}
func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo { return chat.NewMessageRepo(db, log) }
func NewIntegrationRepo(db *gorm.DB, log *logger.Logger) IntegrationRepo {
	return integration.NewIntegrationRepo(db, log)
}
func NewDocumentRepo(db *gorm.DB, log *logger.Logger) DocumentRepo {
	return integration.NewDocumentRepo(db, log)
}
