package services

import (
	"context"
	"strings"

	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

// demoIdentity stands in for a Google account when OAuth is not configured.
var demoIdentity = google.Identity{
	Sub:           "demo-google-user",
	Email:         "demo.user@versatil.dev",
	EmailVerified: true,
	Name:          "Demo User",
}

// OAuthService runs the Google sign-in round trip.
type OAuthService interface {
	StartLogin(ctx context.Context) (*OAuthStart, error)
	CompleteLogin(ctx context.Context, code, state string) (*AuthResult, error)
}

type oauthService struct {
	log    *logger.Logger
	tokens TokenService
	oauth  google.OAuth
	auth   AuthService
}

func NewOAuthService(log *logger.Logger, tokens TokenService, oauth google.OAuth, auth AuthService) OAuthService {
	return &oauthService{
		log:    log.With("service", "OAuthService"),
		tokens: tokens,
		oauth:  oauth,
		auth:   auth,
	}
}

func verifyOAuthState(tokens TokenService, state, purpose string) (*OAuthState, error) {
	st, err := tokens.VerifyState(strings.TrimSpace(state), purpose)
	if err != nil {
		return nil, apierr.Invalid("invalid_state", "Invalid or expired OAuth state")
	}
	return st, nil
}

func (s *oauthService) StartLogin(ctx context.Context) (*OAuthStart, error) {
	state, err := s.tokens.IssueState(OAuthState{Purpose: StatePurposeLogin})
	if err != nil {
		return nil, err
	}
	if !s.oauth.Enabled() {
		return &OAuthStart{URL: demoCallbackURL(s.oauth.RedirectBaseURL(), google.IdentityCallbackPath, state), State: state}, nil
	}
	return &OAuthStart{URL: s.oauth.IdentityAuthURL(state), State: state}, nil
}

func (s *oauthService) CompleteLogin(ctx context.Context, code, state string) (*AuthResult, error) {
	if _, err := verifyOAuthState(s.tokens, state, StatePurposeLogin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, apierr.Invalid("invalid_request", "Missing authorization code")
	}
	if !s.oauth.Enabled() && code == DemoAuthCode {
		id := demoIdentity
		return s.auth.LoginWithIdentity(ctx, &id)
	}
	id, err := s.oauth.ExchangeIdentity(ctx, code)
	if err != nil {
		s.log.Warn("Google sign-in failed", "error", err)
		return nil, apierr.Provider("oauth_exchange_failed", err)
	}
	return s.auth.LoginWithIdentity(ctx, id)
}
