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
	assistantdomain "github.com/versatil/versatil-backend/internal/domain/assistant"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type AssistantInput struct {
	Name         string
	Description  string
	AvatarURL    string
	Type         string
	Model        string
	SystemPrompt string
	Instructions string
	Tools        json.RawMessage
	DataSources  json.RawMessage
	Settings     json.RawMessage
	IsPublic     bool
}

// AssistantUpdate carries only the fields the caller sent.
type AssistantUpdate struct {
	Name         *string
	Description  *string
	AvatarURL    *string
	Type         *string
	Model        *string
	SystemPrompt *string
	Instructions *string
	Tools        json.RawMessage
	DataSources  json.RawMessage
	Settings     json.RawMessage
	IsPublic     *bool
}

type AssistantService interface {
	List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Assistant, error)
	Create(ctx context.Context, userID, workspaceID uuid.UUID, in AssistantInput) (*types.Assistant, error)
	Get(ctx context.Context, userID, workspaceID, assistantID uuid.UUID) (*types.Assistant, error)
	Update(ctx context.Context, userID, workspaceID, assistantID uuid.UUID, in AssistantUpdate) (*types.Assistant, error)
	Delete(ctx context.Context, userID, workspaceID, assistantID uuid.UUID) error
}

type assistantService struct {
	db            *gorm.DB
	log           *logger.Logger
	tenancy       TenancyService
	assistantRepo repos.AssistantRepo
	convRepo      repos.ConversationRepo
	msgRepo       repos.MessageRepo
}

func NewAssistantService(
	db *gorm.DB,
	log *logger.Logger,
	tenancy TenancyService,
	assistantRepo repos.AssistantRepo,
	convRepo repos.ConversationRepo,
	msgRepo repos.MessageRepo,
) AssistantService {
	return &assistantService{
		db:            db,
		log:           log.With("service", "AssistantService"),
		tenancy:       tenancy,
		assistantRepo: assistantRepo,
		convRepo:      convRepo,
		msgRepo:       msgRepo,
	}
}

func assistantNotFound() error {
	return apierr.NotFound("assistant_not_found", "Assistant not found")
}

func parseAssistantType(raw string) (types.AssistantType, error) {
	t := types.AssistantType(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return assistantdomain.TypeChat, nil
	}
	if !t.Valid() {
		return "", apierr.Invalid("invalid_assistant_type", "Type must be chat, workflow, search or analysis")
	}
	return t, nil
}

// jsonColumn validates raw against the expected shape. Empty input yields nil
// so the model hook can apply its default.
func jsonColumn(field string, raw json.RawMessage, wantArray bool) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	ok := isJSONObject(raw)
	shape := "object"
	if wantArray {
		ok = isJSONArray(raw)
		shape = "array"
	}
	if !ok {
		return nil, apierr.Invalid("invalid_"+field, fmt.Sprintf("%s must be a JSON %s", field, shape))
	}
	return datatypes.JSON(raw), nil
}

func (s *assistantService) List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Assistant, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.assistantRepo.ListByWorkspace(dbctx.Context{Ctx: ctx}, workspaceID)
}

func (s *assistantService) Create(ctx context.Context, userID, workspaceID uuid.UUID, in AssistantInput) (*types.Assistant, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Invalid("invalid_request", "Name is required")
	}
	typ, err := parseAssistantType(in.Type)
	if err != nil {
		return nil, err
	}
	tools, err := jsonColumn("tools", in.Tools, true)
	if err != nil {
		return nil, err
	}
	sources, err := jsonColumn("data_sources", in.DataSources, true)
	if err != nil {
		return nil, err
	}
	settings, err := jsonColumn("settings", in.Settings, false)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = assistantdomain.DefaultModel
	}
	a := &types.Assistant{
		WorkspaceID:  workspaceID,
		Name:         name,
		Description:  in.Description,
		AvatarURL:    in.AvatarURL,
		Type:         typ,
		Model:        model,
		Provider:     assistantdomain.ResolveProvider(model),
		SystemPrompt: in.SystemPrompt,
		Instructions: in.Instructions,
		Tools:        tools,
		DataSources:  sources,
		Settings:     settings,
		CreatedBy:    userID,
		IsPublic:     in.IsPublic,
	}
	if err := s.assistantRepo.Create(dbctx.Context{Ctx: ctx}, a); err != nil {
		return nil, fmt.Errorf("create assistant: %w", err)
	}
	s.log.Info("Assistant created", "assistant_id", a.ID, "workspace_id", workspaceID, "provider", a.Provider)
	return a, nil
}

func (s *assistantService) Get(ctx context.Context, userID, workspaceID, assistantID uuid.UUID) (*types.Assistant, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	a, err := s.assistantRepo.GetByID(dbctx.Context{Ctx: ctx}, workspaceID, assistantID)
	if err != nil {
		return nil, fmt.Errorf("load assistant: %w", err)
	}
	if a == nil {
		return nil, assistantNotFound()
	}
	return a, nil
}

func (s *assistantService) Update(ctx context.Context, userID, workspaceID, assistantID uuid.UUID, in AssistantUpdate) (*types.Assistant, error) {
	if _, err := s.Get(ctx, userID, workspaceID, assistantID); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.Invalid("invalid_request", "Name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.Type != nil {
		typ, err := parseAssistantType(*in.Type)
		if err != nil {
			return nil, err
		}
		updates["type"] = typ
	}
	if in.Model != nil {
		model := strings.TrimSpace(*in.Model)
		if model == "" {
			return nil, apierr.Invalid("invalid_request", "Model cannot be empty")
		}
		updates["model"] = model
		updates["provider"] = assistantdomain.ResolveProvider(model)
	}
	if in.SystemPrompt != nil {
		updates["system_prompt"] = *in.SystemPrompt
	}
	if in.Instructions != nil {
		updates["instructions"] = *in.Instructions
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	for _, col := range []struct {
		field string
		raw   json.RawMessage
		array bool
	}{
		{"tools", in.Tools, true},
		{"data_sources", in.DataSources, true},
		{"settings", in.Settings, false},
	} {
		v, err := jsonColumn(col.field, col.raw, col.array)
		if err != nil {
			return nil, err
		}
		if v != nil {
			updates[col.field] = v
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.assistantRepo.UpdateFields(dbc, workspaceID, assistantID, updates); err != nil {
		return nil, fmt.Errorf("update assistant: %w", err)
	}
	return s.Get(ctx, userID, workspaceID, assistantID)
}

// Delete removes the assistant with its conversations and their messages.
func (s *assistantService) Delete(ctx context.Context, userID, workspaceID, assistantID uuid.UUID) error {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return err
	}
	var convIDs []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		convIDs, err = s.convRepo.IDsByAssistant(dbc, assistantID)
		if err != nil {
			return err
		}
		n, err := s.assistantRepo.Delete(dbc, workspaceID, assistantID)
		if err != nil {
			return err
		}
		if n == 0 {
			return assistantNotFound()
		}
		if err := s.msgRepo.DeleteByConversationIDs(dbc, convIDs); err != nil {
			return err
		}
		return s.convRepo.DeleteByIDs(dbc, convIDs)
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return err
		}
		return fmt.Errorf("delete assistant: %w", err)
	}
	s.log.Info("Assistant deleted", "assistant_id", assistantID, "conversations", len(convIDs))
	return nil
}
