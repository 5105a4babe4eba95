package google

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/versatil/versatil-backend/internal/platform/logger"
)

const (
	IdentityCallbackPath = "/api/auth/google/callback"
	DriveCallbackPath    = "/api/integrations/google/callback"
)

type OAuthConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectBaseURL string
}

func (c OAuthConfig) Enabled() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// Identity is the subset of Google's userinfo the backend keeps.
type Identity struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type OAuth interface {
	Enabled() bool
	RedirectBaseURL() string
	IdentityAuthURL(state string) string
	DriveAuthURL(state string) string
	ExchangeIdentity(ctx context.Context, code string) (*Identity, error)
	// ExchangeDrive trades the code for an offline token and reports which account granted it.
	ExchangeDrive(ctx context.Context, code string) (*oauth2.Token, *Identity, error)
	DriveScopes() []string
	Connector() Connector
}

type googleOAuth struct {
	log      *logger.Logger
	cfg      OAuthConfig
	identity *oauth2.Config
	drive    *oauth2.Config
}

func NewOAuth(log *logger.Logger, cfg OAuthConfig) OAuth {
	base := strings.TrimRight(strings.TrimSpace(cfg.RedirectBaseURL), "/")
	cfg.RedirectBaseURL = base
	return &googleOAuth{
		log: log.With("client", "GoogleOAuth"),
		cfg: cfg,
		identity: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     googleoauth.Endpoint,
			RedirectURL:  base + IdentityCallbackPath,
			Scopes:       []string{"openid", oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
		},
		drive: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     googleoauth.Endpoint,
			RedirectURL:  base + DriveCallbackPath,
			Scopes:       []string{drive.DriveReadonlyScope, oauth2api.UserinfoEmailScope},
		},
	}
}

func (g *googleOAuth) Enabled() bool { return g.cfg.Enabled() }

func (g *googleOAuth) RedirectBaseURL() string { return g.cfg.RedirectBaseURL }

func (g *googleOAuth) IdentityAuthURL(state string) string {
	return g.identity.AuthCodeURL(state)
}

func (g *googleOAuth) DriveAuthURL(state string) string {
	return g.drive.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (g *googleOAuth) DriveScopes() []string {
	return append([]string(nil), g.drive.Scopes...)
}

func (g *googleOAuth) ExchangeIdentity(ctx context.Context, code string) (*Identity, error) {
	tok, err := g.identity.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}
	return fetchIdentity(ctx, g.identity.TokenSource(ctx, tok))
}

func (g *googleOAuth) ExchangeDrive(ctx context.Context, code string) (*oauth2.Token, *Identity, error) {
	tok, err := g.drive.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("google token exchange: %w", err)
	}
	id, err := fetchIdentity(ctx, g.drive.TokenSource(ctx, tok))
	if err != nil {
		return nil, nil, err
	}
	return tok, id, nil
}

func (g *googleOAuth) Connector() Connector {
	return &oauthConnector{cfg: g.drive}
}

func fetchIdentity(ctx context.Context, ts oauth2.TokenSource) (*Identity, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("google userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	out := &Identity{
		Sub:     info.Id,
		Email:   strings.ToLower(strings.TrimSpace(info.Email)),
		Name:    info.Name,
		Picture: info.Picture,
	}
	if info.VerifiedEmail != nil {
		out.EmailVerified = *info.VerifiedEmail
	}
	if out.Sub == "" || out.Email == "" {
		return nil, fmt.Errorf("google userinfo: missing subject or email")
	}
	return out, nil
}
