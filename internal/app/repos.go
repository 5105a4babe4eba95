package app

import (
	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/repos"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	UserIdentity    repos.UserIdentityRepo
	Workspace       repos.WorkspaceRepo
	WorkspaceMember repos.WorkspaceMemberRepo
	Assistant       repos.AssistantRepo
	Conversation    repos.ConversationRepo
	Message         repos.MessageRepo
	Integration     repos.IntegrationRepo
	Document        repos.DocumentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserIdentity:    repos.NewUserIdentityRepo(db, log),
		Workspace:       repos.NewWorkspaceRepo(db, log),
		WorkspaceMember: repos.NewWorkspaceMemberRepo(db, log),
		Assistant:       repos.NewAssistantRepo(db, log),
		Conversation:    repos.NewConversationRepo(db, log),
		Message:         repos.NewMessageRepo(db, log),
		Integration:     repos.NewIntegrationRepo(db, log),
		Document:        repos.NewDocumentRepo(db, log),
	}
}
