package app

import (
	"context"
	"fmt"

	"github.com/versatil/versatil-backend/internal/platform/gcp"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/llm"
	"github.com/versatil/versatil-backend/internal/platform/logger"
	"github.com/versatil/versatil-backend/internal/realtime"
	"github.com/versatil/versatil-backend/internal/realtime/bus"
)

// Clients are the external integrations. Optional ones stay nil when their
// configuration is absent.
type Clients struct {
	Providers *llm.Registry
	OAuth     google.OAuth
	Document  gcp.Document
	Avatars   gcp.BucketService
	Hub       *realtime.Hub
	Bus       bus.Bus
}

// Publisher is the bus when configured, otherwise the local hub.
func (c Clients) Publisher() realtime.Publisher {
	if c.Bus != nil {
		return c.Bus
	}
	return c.Hub
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// LLM providers
	var providers []llm.Client
	if cfg.OpenAI.APIKey != "" {
		c, err := llm.NewOpenAIClient(log, cfg.OpenAI)
		if err != nil {
			return out, fmt.Errorf("init openai client: %w", err)
		}
		providers = append(providers, c)
	}
	if cfg.Anthropic.APIKey != "" {
		c, err := llm.NewAnthropicClient(log, cfg.Anthropic)
		if err != nil {
			return out, fmt.Errorf("init anthropic client: %w", err)
		}
		providers = append(providers, c)
	}
	if len(providers) == 0 {
		log.Warn("No LLM provider configured, assistants answer in demo mode")
	}
	out.Providers = llm.NewRegistry(providers...)

	// Google
	out.OAuth = google.NewOAuth(log, cfg.Google)
	if !cfg.Google.Enabled() {
		log.Warn("Google OAuth not configured, demo OAuth flows enabled")
	}

	// Gcp
	if cfg.Document.Enabled() {
		doc, err := gcp.NewDocument(log, cfg.Document)
		if err != nil {
			return out, fmt.Errorf("init document ai: %w", err)
		}
		out.Document = doc
	}
	if cfg.Avatars.Name != "" {
		bucket, err := gcp.NewBucketService(log, cfg.Avatars)
		if err != nil {
			out.Close()
			return out, fmt.Errorf("init bucket client: %w", err)
		}
		out.Avatars = bucket
	}

	// Realtime
	out.Hub = realtime.NewHub(log)
	if cfg.Redis.Addr != "" {
		b, err := bus.NewRedisBus(log, cfg.Redis)
		if err != nil {
			out.Close()
			return out, fmt.Errorf("init redis bus: %w", err)
		}
		if err := b.StartForwarder(ctx, out.Hub.Broadcast); err != nil {
			_ = b.Close()
			out.Close()
			return out, fmt.Errorf("start redis forwarder: %w", err)
		}
		out.Bus = b
	}

	return out, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Document != nil {
		_ = c.Document.Close()
	}
	if c.Avatars != nil {
		_ = c.Avatars.Close()
	}
}
