package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/repos"
	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/dberr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

// Slugify lower-cases name and turns spaces into hyphens.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

type WorkspaceInput struct {
	Name        string
	Description string
}

type WorkspaceUpdate struct {
	Name        *string
	Description *string
	Settings    json.RawMessage
}

type WorkspaceService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.Workspace, error)
	Create(ctx context.Context, userID uuid.UUID, in WorkspaceInput) (*types.Workspace, error)
	Get(ctx context.Context, userID, workspaceID uuid.UUID) (*types.Workspace, error)
	Update(ctx context.Context, userID, workspaceID uuid.UUID, in WorkspaceUpdate) (*types.Workspace, error)
	Delete(ctx context.Context, userID, workspaceID uuid.UUID) error
	AddMember(ctx context.Context, userID, workspaceID uuid.UUID, email string, role types.WorkspaceRole) (*types.Workspace, error)
	RemoveMember(ctx context.Context, userID, workspaceID, memberID uuid.UUID) (*types.Workspace, error)
}

type workspaceService struct {
	db              *gorm.DB
	log             *logger.Logger
	tenancy         TenancyService
	userRepo        repos.UserRepo
	workspaceRepo   repos.WorkspaceRepo
	memberRepo      repos.WorkspaceMemberRepo
	assistantRepo   repos.AssistantRepo
	convRepo        repos.ConversationRepo
	msgRepo         repos.MessageRepo
	integrationRepo repos.IntegrationRepo
	documentRepo    repos.DocumentRepo
}

func NewWorkspaceService(
	db *gorm.DB,
	log *logger.Logger,
	tenancy TenancyService,
	userRepo repos.UserRepo,
	workspaceRepo repos.WorkspaceRepo,
	memberRepo repos.WorkspaceMemberRepo,
	assistantRepo repos.AssistantRepo,
	convRepo repos.ConversationRepo,
	msgRepo repos.MessageRepo,
	integrationRepo repos.IntegrationRepo,
	documentRepo repos.DocumentRepo,
) WorkspaceService {
	return &workspaceService{
		db:              db,
		log:             log.With("service", "WorkspaceService"),
		tenancy:         tenancy,
		userRepo:        userRepo,
		workspaceRepo:   workspaceRepo,
		memberRepo:      memberRepo,
		assistantRepo:   assistantRepo,
		convRepo:        convRepo,
		msgRepo:         msgRepo,
		integrationRepo: integrationRepo,
		documentRepo:    documentRepo,
	}
}

func (s *workspaceService) List(ctx context.Context, userID uuid.UUID) ([]*types.Workspace, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := s.memberRepo.WorkspaceIDsForUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return s.workspaceRepo.ListByIDs(dbc, ids)
}

func (s *workspaceService) Create(ctx context.Context, userID uuid.UUID, in WorkspaceInput) (*types.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	slug := Slugify(name)
	if slug == "" {
		return nil, apierr.Invalid("invalid_workspace_name", "Workspace name is required")
	}
	ws := &types.Workspace{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     userID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.workspaceRepo.Create(dbc, ws); err != nil {
			return err
		}
		m := &types.WorkspaceMember{WorkspaceID: ws.ID, UserID: userID, Role: types.RoleOwner}
		if err := s.memberRepo.Create(dbc, m); err != nil {
			return err
		}
		ws.Members = []types.WorkspaceMember{*m}
		return nil
	})
	if err != nil {
		return nil, translateUniqueErr(err)
	}
	s.log.Info("Workspace created", "workspace_id", ws.ID, "owner_id", userID)
	return ws, nil
}

func (s *workspaceService) Get(ctx context.Context, userID, workspaceID uuid.UUID) (*types.Workspace, error) {
	return s.tenancy.Authorize(ctx, userID, workspaceID)
}

func (s *workspaceService) Update(ctx context.Context, userID, workspaceID uuid.UUID, in WorkspaceUpdate) (*types.Workspace, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.Invalid("invalid_workspace_name", "Workspace name is required")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if len(in.Settings) > 0 {
		if !isJSONObject(in.Settings) {
			return nil, apierr.Invalid("invalid_settings", "Settings must be a JSON object")
		}
		updates["settings"] = datatypes.JSON(in.Settings)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.workspaceRepo.UpdateFields(dbc, workspaceID, updates); err != nil {
		return nil, fmt.Errorf("update workspace: %w", err)
	}
	return s.workspaceRepo.GetByID(dbc, workspaceID)
}

// Delete removes the workspace and everything it owns in one transaction.
func (s *workspaceService) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	if _, err := s.tenancy.RequireRole(ctx, userID, workspaceID, types.RoleOwner); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		convIDs, err := s.convRepo.IDsByWorkspace(dbc, workspaceID)
		if err != nil {
			return err
		}
		if err := s.msgRepo.DeleteByConversationIDs(dbc, convIDs); err != nil {
			return err
		}
		if err := s.convRepo.DeleteByIDs(dbc, convIDs); err != nil {
			return err
		}
		if err := s.assistantRepo.DeleteByWorkspace(dbc, workspaceID); err != nil {
			return err
		}
		if err := s.documentRepo.DeleteByWorkspace(dbc, workspaceID); err != nil {
			return err
		}
		if err := s.integrationRepo.DeleteByWorkspace(dbc, workspaceID); err != nil {
			return err
		}
		if err := s.memberRepo.DeleteByWorkspace(dbc, workspaceID); err != nil {
			return err
		}
		return s.workspaceRepo.Delete(dbc, workspaceID)
	})
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	s.log.Info("Workspace deleted", "workspace_id", workspaceID, "user_id", userID)
	return nil
}

func (s *workspaceService) AddMember(ctx context.Context, userID, workspaceID uuid.UUID, email string, role types.WorkspaceRole) (*types.Workspace, error) {
	if _, err := s.tenancy.RequireRole(ctx, userID, workspaceID, types.RoleOwner, types.RoleAdmin); err != nil {
		return nil, err
	}
	if role == "" {
		role = types.RoleMember
	}
	if !role.Valid() || role == types.RoleOwner {
		return nil, apierr.Invalid("invalid_role", "Role must be admin, member or guest")
	}
	dbc := dbctx.Context{Ctx: ctx}
	invitee, err := s.userRepo.GetByEmail(dbc, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if invitee == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	err = s.memberRepo.Create(dbc, &types.WorkspaceMember{WorkspaceID: workspaceID, UserID: invitee.ID, Role: role})
	if dberr.IsUniqueViolation(err, "idx_workspace_member", "workspace_members.workspace_id") {
		return nil, apierr.Conflict(0, "already_member", "User is already a member")
	}
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	s.log.Info("Member added", "workspace_id", workspaceID, "user_id", invitee.ID, "role", role)
	return s.workspaceRepo.GetByID(dbc, workspaceID)
}

func (s *workspaceService) RemoveMember(ctx context.Context, userID, workspaceID, memberID uuid.UUID) (*types.Workspace, error) {
	ws, err := s.tenancy.RequireRole(ctx, userID, workspaceID, types.RoleOwner, types.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if memberID == ws.OwnerID {
		return nil, apierr.Invalid("cannot_remove_owner", "The workspace owner cannot be removed")
	}
	dbc := dbctx.Context{Ctx: ctx}
	n, err := s.memberRepo.Delete(dbc, workspaceID, memberID)
	if err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}
	if n == 0 {
		return nil, apierr.NotFound("member_not_found", "Member not found")
	}
	return s.workspaceRepo.GetByID(dbc, workspaceID)
}

func isJSONObject(raw json.RawMessage) bool {
	var m map[string]any
	return json.Unmarshal(raw, &m) == nil && m != nil
}

func isJSONArray(raw json.RawMessage) bool {
	var a []any
	return json.Unmarshal(raw, &a) == nil && a != nil
}
