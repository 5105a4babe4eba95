package app

import (
	"time"

	"github.com/versatil/versatil-backend/internal/data/db"
	httpMW "github.com/versatil/versatil-backend/internal/http/middleware"
	"github.com/versatil/versatil-backend/internal/observability"
	"github.com/versatil/versatil-backend/internal/platform/envutil"
	"github.com/versatil/versatil-backend/internal/platform/gcp"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/llm"
	"github.com/versatil/versatil-backend/internal/realtime/bus"
	"github.com/versatil/versatil-backend/internal/services"
)

const (
	DefaultPort           = "8000"
	DefaultJWTSecret      = "your-secret-key-change-in-production"
	DefaultAuthRateLimit  = 30
	defaultRedirectBase   = "http://localhost:8000"
	defaultServiceVersion = "1.0.0"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	OpenAI          llm.Config
	Anthropic       llm.Config
	ProviderTimeout time.Duration

	Google   google.OAuthConfig
	Document gcp.DocumentConfig
	Avatars  gcp.BucketConfig
	Redis    bus.RedisConfig

	SyncConcurrency int
	SyncTimeout     time.Duration

	AllowedOrigins []string
	AuthRateLimit  int

	Otel observability.OtelConfig
}

func LoadConfig() Config {
	return Config{
		Port:    envutil.String("PORT", DefaultPort),
		LogMode: envutil.String("LOG_MODE", "development"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			DatabaseURL:      envutil.String("DATABASE_URL", ""),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "versatil"),
			SQLitePath:       envutil.String("SQLITE_PATH", "versatil.db"),
		},
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", DefaultJWTSecret),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", services.DefaultAccessTTL),
		OpenAI: llm.Config{
			APIKey:  envutil.String("OPENAI_API_KEY", ""),
			BaseURL: envutil.String("OPENAI_BASE_URL", ""),
		},
		Anthropic: llm.Config{
			APIKey:  envutil.String("ANTHROPIC_API_KEY", ""),
			BaseURL: envutil.String("ANTHROPIC_BASE_URL", ""),
		},
		ProviderTimeout: envutil.Seconds("PROVIDER_TIMEOUT_SECONDS", services.DefaultProviderTimeout),
		Google: google.OAuthConfig{
			ClientID:        envutil.String("GOOGLE_CLIENT_ID", ""),
			ClientSecret:    envutil.String("GOOGLE_CLIENT_SECRET", ""),
			RedirectBaseURL: envutil.String("OAUTH_REDIRECT_BASE_URL", defaultRedirectBase),
		},
		Document: gcp.DocumentConfig{
			ProjectID:        envutil.String("DOCUMENTAI_PROJECT_ID", ""),
			Location:         envutil.String("DOCUMENTAI_LOCATION", "us"),
			ProcessorID:      envutil.String("DOCUMENTAI_PROCESSOR_ID", ""),
			ProcessorVersion: envutil.String("DOCUMENTAI_PROCESSOR_VERSION", ""),
		},
		Avatars: gcp.BucketConfig{
			Name:      envutil.String("AVATAR_GCS_BUCKET_NAME", ""),
			CDNDomain: envutil.String("AVATAR_CDN_DOMAIN", ""),
		},
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			Channel:  envutil.String("REDIS_CHANNEL", bus.DefaultChannel),
		},
		SyncConcurrency: envutil.Int("SYNC_CONCURRENCY", services.DefaultSyncConcurrency),
		SyncTimeout:     envutil.Seconds("SYNC_TIMEOUT_SECONDS", services.DefaultSyncTimeout),
		AllowedOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", httpMW.DefaultAllowedOrigins),
		AuthRateLimit:   envutil.Int("AUTH_RATE_LIMIT_PER_MINUTE", DefaultAuthRateLimit),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     defaultServiceVersion,
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: sampleRatio(envutil.Int("OTEL_SAMPLER_PERCENT", 10)),
		},
	}
}

func sampleRatio(percent int) float64 {
	return float64(percent) / 100
}
