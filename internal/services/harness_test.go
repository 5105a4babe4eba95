package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/repos"
	"github.com/versatil/versatil-backend/internal/data/repos/testutil"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/llm"
	"github.com/versatil/versatil-backend/internal/realtime"
)

type fakeLLM struct {
	provider string
	resp     *llm.Response
	err      error
	block    bool

	mu    sync.Mutex
	calls []llm.Request
}

func (f *fakeLLM) Provider() string { return f.provider }

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type harness struct {
	db      *gorm.DB
	tokens  TokenService
	hub     *realtime.Hub
	repos   harnessRepos
	tenancy TenancyService
	auth    AuthService
	ws      WorkspaceService
	asst    AssistantService
	conv    ConversationService
	integ   IntegrationService
	oauth   OAuthService
}

type harnessRepos struct {
	users         repos.UserRepo
	workspaces    repos.WorkspaceRepo
	members       repos.WorkspaceMemberRepo
	assistants    repos.AssistantRepo
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	integrations  repos.IntegrationRepo
	documents     repos.DocumentRepo
}

type harnessOpts struct {
	clients         []llm.Client
	providerTimeout time.Duration
	connector       google.Connector
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	r := harnessRepos{
		users:         repos.NewUserRepo(db, log),
		workspaces:    repos.NewWorkspaceRepo(db, log),
		members:       repos.NewWorkspaceMemberRepo(db, log),
		assistants:    repos.NewAssistantRepo(db, log),
		conversations: repos.NewConversationRepo(db, log),
		messages:      repos.NewMessageRepo(db, log),
		integrations:  repos.NewIntegrationRepo(db, log),
		documents:     repos.NewDocumentRepo(db, log),
	}
	tokens, err := NewTokenService("test-secret", time.Hour, nil)
	require.NoError(t, err)
	avatars, err := NewAvatarService(log, nil)
	require.NoError(t, err)

	hub := realtime.NewHub(log)
	tenancy := NewTenancyService(log, r.users, r.workspaces)
	identities := repos.NewUserIdentityRepo(db, log)
	auth := NewAuthService(db, log, r.users, identities, r.workspaces, r.members, avatars, tokens)
	oauthClient := google.NewOAuth(log, google.OAuthConfig{RedirectBaseURL: "http://localhost:8000"})
	worker := NewSyncWorker(log, r.integrations, r.documents, opts.connector, nil, SyncConfig{Concurrency: 2})

	return &harness{
		db:      db,
		tokens:  tokens,
		hub:     hub,
		repos:   r,
		tenancy: tenancy,
		auth:    auth,
		ws: NewWorkspaceService(db, log, tenancy, r.users, r.workspaces, r.members,
			r.assistants, r.conversations, r.messages, r.integrations, r.documents),
		asst: NewAssistantService(db, log, tenancy, r.assistants, r.conversations, r.messages),
		conv: NewConversationService(db, log, tenancy, r.assistants, r.conversations, r.messages,
			llm.NewRegistry(opts.clients...), hub, ConversationServiceConfig{ProviderTimeout: opts.providerTimeout}),
		integ: NewIntegrationService(log, tenancy, tokens, oauthClient, worker, r.users, r.integrations, r.documents),
		oauth: NewOAuthService(log, tokens, oauthClient, auth),
	}
}

func (h *harness) register(t *testing.T, email, name, workspace string) *AuthResult {
	t.Helper()
	res, err := h.auth.Register(context.Background(), RegisterInput{
		Email:         email,
		Password:      "password123",
		Name:          name,
		WorkspaceName: workspace,
	})
	require.NoError(t, err)
	return res
}

func requireAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %T: %v", err, err)
	require.Equal(t, status, ae.Status, "status for %v", err)
	require.Equal(t, code, ae.Code)
}
