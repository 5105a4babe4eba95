package llm

import (
	"context"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultMaxTokens caps a single assistant reply.
const DefaultMaxTokens = 1000

// Request is one single-turn completion: a system prompt plus the user's text.
type Request struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

type Response struct {
	Content          string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// Client is a provider able to answer a Request.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Provider() string
}

type Config struct {
	APIKey  string
	BaseURL string
}

// Registry holds the configured provider clients. Providers without
// credentials are simply absent.
type Registry struct {
	clients map[string]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: map[string]Client{}}
	for _, c := range clients {
		if c != nil {
			r.clients[strings.ToLower(c.Provider())] = c
		}
	}
	return r
}

func (r *Registry) Get(provider string) (Client, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.clients[strings.ToLower(strings.TrimSpace(provider))]
	return c, ok
}

func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.clients))
	for p := range r.clients {
		out = append(out, p)
	}
	return out
}
