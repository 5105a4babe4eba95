package app

import (
	apphttp "github.com/versatil/versatil-backend/internal/http"
	httpH "github.com/versatil/versatil-backend/internal/http/handlers"
	httpMW "github.com/versatil/versatil-backend/internal/http/middleware"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

func wireRouterConfig(log *logger.Logger, cfg Config, services Services, clients Clients) apphttp.RouterConfig {
	log.Info("Wiring handlers...")
	return apphttp.RouterConfig{
		Log:            log,
		ServiceName:    cfg.Otel.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  httpMW.NewRateLimiter(cfg.AuthRateLimit),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, services.Auth),

		HealthHandler:       httpH.NewHealthHandler(),
		AuthHandler:         httpH.NewAuthHandler(services.Auth, services.OAuth),
		UserHandler:         httpH.NewUserHandler(services.User),
		WorkspaceHandler:    httpH.NewWorkspaceHandler(services.Workspace),
		AssistantHandler:    httpH.NewAssistantHandler(services.Assistant),
		ConversationHandler: httpH.NewConversationHandler(services.Conversation),
		IntegrationHandler:  httpH.NewIntegrationHandler(services.Integration),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, clients.Hub, services.Conversation, cfg.AllowedOrigins),
	}
}
