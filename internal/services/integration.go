package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/versatil/versatil-backend/internal/data/repos"
	types "github.com/versatil/versatil-backend/internal/domain"
	intdomain "github.com/versatil/versatil-backend/internal/domain/integration"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

// DemoAuthCode is the authorization code demo-mode URLs carry to the callbacks.
const DemoAuthCode = "demo"

// OAuthStart is what a client needs to begin an OAuth round trip.
type OAuthStart struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type IntegrationService interface {
	List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Integration, error)
	StartGoogle(ctx context.Context, userID, workspaceID uuid.UUID) (*OAuthStart, error)
	CompleteGoogle(ctx context.Context, code, state string) (*types.Integration, error)
	Sync(ctx context.Context, userID, integrationID uuid.UUID) ([]*types.Document, error)
	Disconnect(ctx context.Context, userID, integrationID uuid.UUID) (*types.Integration, error)
	ListDocuments(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Document, error)
	GetDocument(ctx context.Context, userID, workspaceID, documentID uuid.UUID) (*types.Document, error)
}

type integrationService struct {
	log             *logger.Logger
	tenancy         TenancyService
	tokens          TokenService
	oauth           google.OAuth
	worker          SyncWorker
	userRepo        repos.UserRepo
	integrationRepo repos.IntegrationRepo
	documentRepo    repos.DocumentRepo
}

func NewIntegrationService(
	log *logger.Logger,
	tenancy TenancyService,
	tokens TokenService,
	oauth google.OAuth,
	worker SyncWorker,
	userRepo repos.UserRepo,
	integrationRepo repos.IntegrationRepo,
	documentRepo repos.DocumentRepo,
) IntegrationService {
	return &integrationService{
		log:             log.With("service", "IntegrationService"),
		tenancy:         tenancy,
		tokens:          tokens,
		oauth:           oauth,
		worker:          worker,
		userRepo:        userRepo,
		integrationRepo: integrationRepo,
		documentRepo:    documentRepo,
	}
}

// demoCallbackURL points a demo-mode client straight at the callback.
func demoCallbackURL(base, path, state string) string {
	q := url.Values{}
	q.Set("code", DemoAuthCode)
	q.Set("state", state)
	return strings.TrimRight(base, "/") + path + "?" + q.Encode()
}

func (s *integrationService) List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Integration, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.integrationRepo.ListByWorkspace(dbctx.Context{Ctx: ctx}, workspaceID)
}

func (s *integrationService) StartGoogle(ctx context.Context, userID, workspaceID uuid.UUID) (*OAuthStart, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	state, err := s.tokens.IssueState(OAuthState{
		Purpose:     StatePurposeIntegration,
		WorkspaceID: workspaceID,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	if !s.oauth.Enabled() {
		return &OAuthStart{URL: demoCallbackURL(s.oauth.RedirectBaseURL(), google.DriveCallbackPath, state), State: state}, nil
	}
	return &OAuthStart{URL: s.oauth.DriveAuthURL(state), State: state}, nil
}

func (s *integrationService) CompleteGoogle(ctx context.Context, code, state string) (*types.Integration, error) {
	st, err := verifyOAuthState(s.tokens, state, StatePurposeIntegration)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, apierr.Invalid("invalid_request", "Missing authorization code")
	}
	// The state may outlive the membership it was minted under.
	if _, err := s.tenancy.Authorize(ctx, st.UserID, st.WorkspaceID); err != nil {
		return nil, err
	}

	scopes, _ := json.Marshal(s.oauth.DriveScopes())
	in := &types.Integration{
		WorkspaceID: st.WorkspaceID,
		UserID:      st.UserID,
		Provider:    intdomain.ProviderGoogleDrive,
		Status:      intdomain.StatusConnected,
		Scopes:      datatypes.JSON(scopes),
	}

	if !s.oauth.Enabled() && code == DemoAuthCode {
		u, err := s.userRepo.GetByID(dbctx.Context{Ctx: ctx}, st.UserID)
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		if u != nil {
			in.AccountEmail = u.Email
		}
		in.Demo = true
		in.Credentials = datatypes.JSON("{}")
	} else {
		tok, id, err := s.oauth.ExchangeDrive(ctx, code)
		if err != nil {
			return nil, apierr.Provider("oauth_exchange_failed", err)
		}
		raw, err := json.Marshal(tok)
		if err != nil {
			return nil, fmt.Errorf("encode token: %w", err)
		}
		in.Credentials = datatypes.JSON(raw)
		in.AccountEmail = id.Email
	}

	out, err := s.integrationRepo.Upsert(dbctx.Context{Ctx: ctx}, in)
	if err != nil {
		return nil, fmt.Errorf("store integration: %w", err)
	}
	s.log.Info("Integration connected", "integration_id", out.ID, "workspace_id", out.WorkspaceID, "demo", out.Demo)
	return out, nil
}

// load returns the integration after checking the caller belongs to its
// workspace. Integration ids are global, so a non-member gets the same 404
// as a missing id.
func (s *integrationService) load(ctx context.Context, userID, integrationID uuid.UUID) (*types.Integration, error) {
	integ, err := s.integrationRepo.GetByID(dbctx.Context{Ctx: ctx}, integrationID)
	if err != nil {
		return nil, fmt.Errorf("load integration: %w", err)
	}
	if integ == nil {
		return nil, integrationNotFound()
	}
	if _, err := s.tenancy.Authorize(ctx, userID, integ.WorkspaceID); err != nil {
		if errors.Is(err, apierr.ErrForbidden) {
			return nil, integrationNotFound()
		}
		return nil, err
	}
	return integ, nil
}

func (s *integrationService) Sync(ctx context.Context, userID, integrationID uuid.UUID) ([]*types.Document, error) {
	if _, err := s.load(ctx, userID, integrationID); err != nil {
		return nil, err
	}
	return s.worker.Sync(ctx, integrationID)
}

// Disconnect flags the integration; its row and documents stay.
func (s *integrationService) Disconnect(ctx context.Context, userID, integrationID uuid.UUID) (*types.Integration, error) {
	integ, err := s.load(ctx, userID, integrationID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.integrationRepo.UpdateFields(dbc, integ.ID, map[string]any{
		"status":     intdomain.StatusDisconnected,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("disconnect integration: %w", err)
	}
	return s.integrationRepo.GetByID(dbc, integ.ID)
}

func (s *integrationService) ListDocuments(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Document, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.documentRepo.ListByWorkspace(dbctx.Context{Ctx: ctx}, workspaceID)
}

func (s *integrationService) GetDocument(ctx context.Context, userID, workspaceID, documentID uuid.UUID) (*types.Document, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	d, err := s.documentRepo.GetByID(dbctx.Context{Ctx: ctx}, workspaceID, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if d == nil {
		return nil, apierr.NotFound("document_not_found", "Document not found")
	}
	return d, nil
}
