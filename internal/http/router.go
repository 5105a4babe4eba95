package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/versatil/versatil-backend/internal/http/handlers"
	httpMW "github.com/versatil/versatil-backend/internal/http/middleware"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	AuthRateLimit  *httpMW.RateLimiter

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	WorkspaceHandler    *httpH.WorkspaceHandler
	AssistantHandler    *httpH.AssistantHandler
	ConversationHandler *httpH.ConversationHandler
	IntegrationHandler  *httpH.IntegrationHandler
	RealtimeHandler     *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/api/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	auth := api.Group("/auth")
	if cfg.AuthRateLimit != nil {
		auth.Use(cfg.AuthRateLimit.Middleware())
	}
	if cfg.AuthHandler != nil {
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.GET("/google/url", cfg.AuthHandler.GoogleURL)
		auth.GET("/google/callback", cfg.AuthHandler.GoogleCallback)
		if cfg.AuthMiddleware != nil {
			auth.GET("/verify", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Verify)
		}
	}

	if cfg.UserHandler != nil {
		api.GET("/users/:id/avatar", cfg.UserHandler.Avatar)
	}
	// The Drive callback carries its user in the signed state.
	if cfg.IntegrationHandler != nil {
		api.GET("/integrations/google/callback", cfg.IntegrationHandler.GoogleCallback)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Workspaces
	if cfg.WorkspaceHandler != nil {
		protected.GET("/workspaces", cfg.WorkspaceHandler.List)
		protected.POST("/workspaces", cfg.WorkspaceHandler.Create)
		protected.GET("/workspaces/:id", cfg.WorkspaceHandler.Get)
		protected.PUT("/workspaces/:id", cfg.WorkspaceHandler.Update)
		protected.DELETE("/workspaces/:id", cfg.WorkspaceHandler.Delete)
		protected.POST("/workspaces/:id/members", cfg.WorkspaceHandler.AddMember)
		protected.DELETE("/workspaces/:id/members/:uid", cfg.WorkspaceHandler.RemoveMember)
	}

	// Assistants
	if cfg.AssistantHandler != nil {
		protected.GET("/models", cfg.AssistantHandler.Models)
		protected.GET("/workspaces/:id/assistants", cfg.AssistantHandler.List)
		protected.POST("/workspaces/:id/assistants", cfg.AssistantHandler.Create)
		protected.GET("/workspaces/:id/assistants/:aid", cfg.AssistantHandler.Get)
		protected.PUT("/workspaces/:id/assistants/:aid", cfg.AssistantHandler.Update)
		protected.DELETE("/workspaces/:id/assistants/:aid", cfg.AssistantHandler.Delete)
	}

	// Conversations
	if cfg.ConversationHandler != nil {
		protected.GET("/workspaces/:id/conversations", cfg.ConversationHandler.List)
		protected.POST("/workspaces/:id/conversations", cfg.ConversationHandler.Create)
		protected.GET("/conversations/:id", cfg.ConversationHandler.Get)
		protected.PUT("/conversations/:id", cfg.ConversationHandler.Update)
		protected.DELETE("/conversations/:id", cfg.ConversationHandler.Delete)
		protected.GET("/conversations/:id/messages", cfg.ConversationHandler.ListMessages)
		protected.POST("/conversations/:id/messages", cfg.ConversationHandler.SendMessage)
	}

	// Integrations
	if cfg.IntegrationHandler != nil {
		protected.GET("/workspaces/:id/integrations", cfg.IntegrationHandler.List)
		protected.POST("/workspaces/:id/integrations/google", cfg.IntegrationHandler.StartGoogle)
		protected.POST("/integrations/:id/sync", cfg.IntegrationHandler.Sync)
		protected.DELETE("/integrations/:id", cfg.IntegrationHandler.Disconnect)
		protected.GET("/workspaces/:id/documents", cfg.IntegrationHandler.ListDocuments)
		protected.GET("/workspaces/:id/documents/:did", cfg.IntegrationHandler.GetDocument)
	}

	// Realtime
	if cfg.RealtimeHandler != nil {
		ws := r.Group("/ws")
		if cfg.AuthMiddleware != nil {
			ws.Use(cfg.AuthMiddleware.RequireAuth())
		}
		ws.GET("/:conversation_id", cfg.RealtimeHandler.Stream)
	}

	return r
}
