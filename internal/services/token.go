package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/platform/apierr"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrUnknownSubject = errors.New("token subject no longer exists")
)

const (
	DefaultAccessTTL = 24 * time.Hour
	stateTTL         = 10 * time.Minute

	StatePurposeLogin       = "login"
	StatePurposeIntegration = "integration"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type stateClaims struct {
	Purpose     string `json:"purpose"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// OAuthState is the context carried through an OAuth round trip.
type OAuthState struct {
	Purpose     string
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
}

type TokenService interface {
	Issue(userID uuid.UUID) (string, error)
	// Verify checks signature and expiry only; it does not look the subject up.
	Verify(token string) (uuid.UUID, error)
	IssueState(st OAuthState) (string, error)
	VerifyState(token, purpose string) (*OAuthState, error)
	TTL() time.Duration
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService signs HS256 tokens with secret. now may be nil.
func NewTokenService(secret string, ttl time.Duration, now func() time.Time) (TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	if now == nil {
		now = time.Now
	}
	return &tokenService{secret: []byte(secret), ttl: ttl, now: now}, nil
}

func (ts *tokenService) TTL() time.Duration { return ts.ttl }

func (ts *tokenService) Issue(userID uuid.UUID) (string, error) {
	now := ts.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

func (ts *tokenService) parse(token string, claims jwt.Claims) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (ts *tokenService) Verify(token string) (uuid.UUID, error) {
	claims := &JWTClaims{}
	if err := ts.parse(token, claims); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

func (ts *tokenService) IssueState(st OAuthState) (string, error) {
	now := ts.now()
	claims := stateClaims{
		Purpose: st.Purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	if st.WorkspaceID != uuid.Nil {
		claims.WorkspaceID = st.WorkspaceID.String()
	}
	if st.UserID != uuid.Nil {
		claims.UserID = st.UserID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

func (ts *tokenService) VerifyState(token, purpose string) (*OAuthState, error) {
	claims := &stateClaims{}
	if err := ts.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	out := &OAuthState{Purpose: claims.Purpose}
	if claims.WorkspaceID != "" {
		id, err := uuid.Parse(claims.WorkspaceID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		out.WorkspaceID = id
	}
	if claims.UserID != "" {
		id, err := uuid.Parse(claims.UserID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		out.UserID = id
	}
	return out, nil
}

func invalidTokenErr() error {
	return apierr.New(http.StatusUnauthorized, "invalid_token", ErrInvalidToken)
}

func unknownSubjectErr() error {
	return apierr.New(http.StatusUnauthorized, "unknown_subject", ErrUnknownSubject)
}
