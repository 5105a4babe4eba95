package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/data/repos"
	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

// TenancyService decides whether a user may act on a workspace. Membership
// grants access to every resource in the workspace; only administrative
// operations look at the member's role.
type TenancyService interface {
	Authorize(ctx context.Context, userID, workspaceID uuid.UUID) (*types.Workspace, error)
	RequireRole(ctx context.Context, userID, workspaceID uuid.UUID, roles ...types.WorkspaceRole) (*types.Workspace, error)
}

type tenancyService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	workspaceRepo repos.WorkspaceRepo
}

func NewTenancyService(log *logger.Logger, userRepo repos.UserRepo, workspaceRepo repos.WorkspaceRepo) TenancyService {
	return &tenancyService{
		log:           log.With("service", "TenancyService"),
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
	}
}

func (s *tenancyService) Authorize(ctx context.Context, userID, workspaceID uuid.UUID) (*types.Workspace, error) {
	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, unknownSubjectErr()
	}
	if !u.HasWorkspace(workspaceID) {
		s.log.Debug("workspace access denied", "user_id", userID, "workspace_id", workspaceID)
		return nil, apierr.Forbidden("forbidden", "Access denied")
	}
	ws, err := s.workspaceRepo.GetByID(dbc, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	if ws == nil {
		return nil, apierr.NotFound("workspace_not_found", "Workspace not found")
	}
	return ws, nil
}

func (s *tenancyService) RequireRole(ctx context.Context, userID, workspaceID uuid.UUID, roles ...types.WorkspaceRole) (*types.Workspace, error) {
	ws, err := s.Authorize(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	have := ws.RoleOf(userID)
	for _, r := range roles {
		if have == r {
			return ws, nil
		}
	}
	return nil, apierr.Forbidden("insufficient_role", "Insufficient workspace role")
}
