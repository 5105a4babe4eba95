package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/repos"
	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/domain/auth"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/platform/dberr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

const TokenTypeBearer = "bearer"

type RegisterInput struct {
	Email         string
	Password      string
	Name          string
	WorkspaceName string
}

type AuthResult struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        *types.User      `json:"user"`
	Workspace   *types.Workspace `json:"workspace"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate verifies the token and resolves its subject.
	Authenticate(ctx context.Context, token string) (*types.User, error)
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
	LoginWithIdentity(ctx context.Context, id *google.Identity) (*AuthResult, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	identityRepo  repos.UserIdentityRepo
	workspaceRepo repos.WorkspaceRepo
	memberRepo    repos.WorkspaceMemberRepo
	avatarService AvatarService
	tokens        TokenService
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	identityRepo repos.UserIdentityRepo,
	workspaceRepo repos.WorkspaceRepo,
	memberRepo repos.WorkspaceMemberRepo,
	avatarService AvatarService,
	tokens TokenService,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		identityRepo:  identityRepo,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		avatarService: avatarService,
		tokens:        tokens,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateRegistration(in *RegisterInput) error {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.WorkspaceName = strings.TrimSpace(in.WorkspaceName)
	if _, err := mail.ParseAddress(in.Email); err != nil || !strings.Contains(in.Email, "@") {
		return apierr.Invalid("invalid_email", "A valid email is required")
	}
	if in.Password == "" {
		return apierr.Invalid("invalid_password", "Password is required")
	}
	if len(in.Password) > 72 {
		return apierr.Invalid("invalid_password", "Password must be at most 72 bytes")
	}
	if in.Name == "" {
		return apierr.Invalid("invalid_name", "Name is required")
	}
	return nil
}

func emailTakenErr() error {
	return apierr.Conflict(http.StatusBadRequest, "email_taken", "Email already registered")
}

func slugConflictErr() error {
	return apierr.Conflict(http.StatusConflict, "slug_conflict", "Workspace slug already taken")
}

// translateUniqueErr maps unique-index failures raised while creating an
// account or workspace to their API errors.
func translateUniqueErr(err error) error {
	switch {
	case dberr.IsUniqueViolation(err, "idx_users_email", "users.email"):
		return emailTakenErr()
	case dberr.IsUniqueViolation(err, "idx_workspaces_slug", "workspaces.slug"):
		return slugConflictErr()
	default:
		return err
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	exists, err := as.userRepo.EmailExists(dbc, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, emailTakenErr()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *types.User
	var ws *types.Workspace
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		user, ws, txErr = as.createAccount(dbc.WithTx(tx), in.Email, in.Name, string(hash), in.WorkspaceName)
		return txErr
	})
	if err != nil {
		return nil, translateUniqueErr(err)
	}
	as.log.Info("User registered", "user_id", user.ID, "workspace_id", ws.ID)
	return as.result(user, ws)
}

// createAccount inserts a user, their first workspace and the owner membership.
func (as *authService) createAccount(dbc dbctx.Context, email, name, passwordHash, workspaceName string) (*types.User, *types.Workspace, error) {
	user := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: passwordHash,
		Name:     name,
	}
	if err := as.avatarService.Assign(dbc.Ctx, user); err != nil {
		return nil, nil, fmt.Errorf("assign avatar: %w", err)
	}
	if err := as.userRepo.Create(dbc, user); err != nil {
		return nil, nil, err
	}

	wsName, slug := workspaceName, Slugify(workspaceName)
	if wsName == "" {
		wsName = name + "'s Workspace"
		slug = "workspace-" + user.ID.String()[:8]
	}
	if slug == "" {
		return nil, nil, apierr.Invalid("invalid_workspace_name", "Workspace name produces an empty slug")
	}
	ws := &types.Workspace{
		Name:    wsName,
		Slug:    slug,
		OwnerID: user.ID,
	}
	if err := as.workspaceRepo.Create(dbc, ws); err != nil {
		return nil, nil, err
	}
	member := &types.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID, Role: types.RoleOwner}
	if err := as.memberRepo.Create(dbc, member); err != nil {
		return nil, nil, err
	}
	ws.Members = []types.WorkspaceMember{*member}
	user.Workspaces = []uuid.UUID{ws.ID}
	return user, ws, nil
}

func (as *authService) result(user *types.User, ws *types.Workspace) (*AuthResult, error) {
	token, err := as.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{AccessToken: token, TokenType: TokenTypeBearer, User: user, Workspace: ws}, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	user, err := as.userRepo.GetByEmail(dbc, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apierr.Unauthorized("invalid_credentials", "Invalid credentials")
	}
	return as.firstWorkspaceResult(dbc, user)
}

func (as *authService) firstWorkspaceResult(dbc dbctx.Context, user *types.User) (*AuthResult, error) {
	if len(user.Workspaces) == 0 {
		return nil, apierr.NotFound("workspace_not_found", "No workspace found")
	}
	ws, err := as.workspaceRepo.GetByID(dbc, user.Workspaces[0])
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	if ws == nil {
		return nil, apierr.NotFound("workspace_not_found", "No workspace found")
	}
	return as.result(user, ws)
}

func (as *authService) Authenticate(ctx context.Context, token string) (*types.User, error) {
	userID, err := as.tokens.Verify(token)
	if err != nil {
		return nil, invalidTokenErr()
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, unknownSubjectErr()
	}
	return user, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	user, err := as.Authenticate(ctx, token)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: user.ID}), nil
}

func (as *authService) LoginWithIdentity(ctx context.Context, id *google.Identity) (*AuthResult, error) {
	if id == nil || id.Sub == "" || id.Email == "" {
		return nil, apierr.Invalid("invalid_identity", "Identity provider returned no subject")
	}
	dbc := dbctx.Context{Ctx: ctx}

	var user *types.User
	var created *types.Workspace
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbc.WithTx(tx)
		link, err := as.identityRepo.GetByProviderSub(txc, auth.ProviderGoogle, id.Sub)
		if err != nil {
			return err
		}
		if link != nil {
			user, err = as.userRepo.GetByID(txc, link.UserID)
			if err != nil {
				return err
			}
			if user != nil {
				return nil
			}
		}

		user, err = as.userRepo.GetByEmail(txc, normalizeEmail(id.Email))
		if err != nil {
			return err
		}
		// Linking to an existing account by email requires Google to vouch for it.
		if user != nil && !id.EmailVerified {
			return apierr.Unauthorized("unverified_email", "Google account email is not verified")
		}
		if user == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			name := strings.TrimSpace(id.Name)
			if name == "" {
				name = strings.SplitN(id.Email, "@", 2)[0]
			}
			user, created, err = as.createAccount(txc, normalizeEmail(id.Email), name, string(hash), "")
			if err != nil {
				return err
			}
		}
		if link == nil {
			_, err = as.identityRepo.Create(txc, []*types.UserIdentity{{
				UserID:        user.ID,
				Provider:      auth.ProviderGoogle,
				ProviderSub:   id.Sub,
				Email:         id.Email,
				EmailVerified: id.EmailVerified,
			}})
		}
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, translateUniqueErr(err)
	}
	if created != nil {
		as.log.Info("User registered via Google", "user_id", user.ID, "workspace_id", created.ID)
		return as.result(user, created)
	}
	return as.firstWorkspaceResult(dbc, user)
}
