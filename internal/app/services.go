package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/platform/logger"
	"github.com/versatil/versatil-backend/internal/services"
)

type Services struct {
	Tokens       services.TokenService
	Tenancy      services.TenancyService
	Avatar       services.AvatarService
	Auth         services.AuthService
	OAuth        services.OAuthService
	User         services.UserService
	Workspace    services.WorkspaceService
	Assistant    services.AssistantService
	Conversation services.ConversationService
	SyncWorker   services.SyncWorker
	Integration  services.IntegrationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	tokens, err := services.NewTokenService(cfg.JWTSecretKey, cfg.AccessTokenTTL, nil)
	if err != nil {
		return Services{}, fmt.Errorf("init token service: %w", err)
	}

	avatars, err := services.NewAvatarService(log, clients.Avatars)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	tenancy := services.NewTenancyService(log, repos.User, repos.Workspace)
	auth := services.NewAuthService(db, log, repos.User, repos.UserIdentity, repos.Workspace, repos.WorkspaceMember, avatars, tokens)
	conversations := services.NewConversationService(db, log, tenancy, repos.Assistant, repos.Conversation, repos.Message, clients.Providers, clients.Publisher(), services.ConversationServiceConfig{
		ProviderTimeout: cfg.ProviderTimeout,
	})
	worker := services.NewSyncWorker(log, repos.Integration, repos.Document, clients.OAuth.Connector(), clients.Document, services.SyncConfig{
		Concurrency: cfg.SyncConcurrency,
		Timeout:     cfg.SyncTimeout,
	})

	return Services{
		Tokens:       tokens,
		Tenancy:      tenancy,
		Avatar:       avatars,
		Auth:         auth,
		OAuth:        services.NewOAuthService(log, tokens, clients.OAuth, auth),
		User:         services.NewUserService(log, repos.User, avatars),
		Workspace:    services.NewWorkspaceService(db, log, tenancy, repos.User, repos.Workspace, repos.WorkspaceMember, repos.Assistant, repos.Conversation, repos.Message, repos.Integration, repos.Document),
		Assistant:    services.NewAssistantService(db, log, tenancy, repos.Assistant, repos.Conversation, repos.Message),
		Conversation: conversations,
		SyncWorker:   worker,
		Integration:  services.NewIntegrationService(log, tenancy, tokens, clients.OAuth, worker, repos.User, repos.Integration, repos.Document),
	}, nil
}
