package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/repos"
	types "github.com/versatil/versatil-backend/internal/domain"
	chatdomain "github.com/versatil/versatil-backend/internal/domain/chat"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/llm"
	"github.com/versatil/versatil-backend/internal/platform/logger"
	"github.com/versatil/versatil-backend/internal/platform/promptstyle"
	"github.com/versatil/versatil-backend/internal/realtime"
)

const (
	DefaultProviderTimeout = 60 * time.Second
	demoProvider           = "demo"
)

type ConversationInput struct {
	AssistantID uuid.UUID
	Title       string
	Metadata    json.RawMessage
}

type ConversationUpdate struct {
	Title    *string
	Status   *string
	Metadata json.RawMessage
}

// SendResult pairs the stored user message with the reply it produced.
type SendResult struct {
	UserMessage      *types.Message `json:"user_message"`
	AssistantMessage *types.Message `json:"assistant_message"`
}

type ConversationService interface {
	List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Conversation, error)
	Create(ctx context.Context, userID, workspaceID uuid.UUID, in ConversationInput) (*types.Conversation, error)
	Get(ctx context.Context, userID, conversationID uuid.UUID) (*types.Conversation, error)
	Update(ctx context.Context, userID, conversationID uuid.UUID, in ConversationUpdate) (*types.Conversation, error)
	Delete(ctx context.Context, userID, conversationID uuid.UUID) error
	ListMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]*types.Message, error)
	SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (*SendResult, error)
}

type ConversationServiceConfig struct {
	ProviderTimeout time.Duration
	Now             func() time.Time
}

type conversationService struct {
	db            *gorm.DB
	log           *logger.Logger
	tenancy       TenancyService
	assistantRepo repos.AssistantRepo
	convRepo      repos.ConversationRepo
	msgRepo       repos.MessageRepo
	providers     *llm.Registry
	publisher     realtime.Publisher
	timeout       time.Duration
	now           func() time.Time
}

func NewConversationService(
	db *gorm.DB,
	log *logger.Logger,
	tenancy TenancyService,
	assistantRepo repos.AssistantRepo,
	convRepo repos.ConversationRepo,
	msgRepo repos.MessageRepo,
	providers *llm.Registry,
	publisher realtime.Publisher,
	cfg ConversationServiceConfig,
) ConversationService {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &conversationService{
		db:            db,
		log:           log.With("service", "ConversationService"),
		tenancy:       tenancy,
		assistantRepo: assistantRepo,
		convRepo:      convRepo,
		msgRepo:       msgRepo,
		providers:     providers,
		publisher:     publisher,
		timeout:       cfg.ProviderTimeout,
		now:           cfg.Now,
	}
}

func conversationNotFound() error {
	return apierr.NotFound("conversation_not_found", "Conversation not found")
}

func (s *conversationService) List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*types.Conversation, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.convRepo.ListByWorkspace(dbctx.Context{Ctx: ctx}, workspaceID, userID, types.ConversationDeleted)
}

func (s *conversationService) Create(ctx context.Context, userID, workspaceID uuid.UUID, in ConversationInput) (*types.Conversation, error) {
	if _, err := s.tenancy.Authorize(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	a, err := s.assistantRepo.GetByID(dbc, workspaceID, in.AssistantID)
	if err != nil {
		return nil, fmt.Errorf("load assistant: %w", err)
	}
	if a == nil {
		return nil, assistantNotFound()
	}
	meta, err := jsonColumn("metadata", in.Metadata, false)
	if err != nil {
		return nil, err
	}
	c := &types.Conversation{
		WorkspaceID: workspaceID,
		AssistantID: a.ID,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Metadata:    meta,
	}
	if err := s.convRepo.Create(dbc, c); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

// Get returns the caller's conversation. Deleted conversations and those
// owned by someone else read as missing.
func (s *conversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*types.Conversation, error) {
	c, err := s.convRepo.GetByID(dbctx.Context{Ctx: ctx}, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if c == nil || c.UserID != userID || c.Status == types.ConversationDeleted {
		return nil, conversationNotFound()
	}
	if _, err := s.tenancy.Authorize(ctx, userID, c.WorkspaceID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *conversationService) Update(ctx context.Context, userID, conversationID uuid.UUID, in ConversationUpdate) (*types.Conversation, error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			title = chatdomain.DefaultConversationTitle
		}
		updates["title"] = title
	}
	if in.Status != nil {
		st := types.ConversationStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !st.Valid() {
			return nil, apierr.Invalid("invalid_status", "Status must be active, archived or deleted")
		}
		updates["status"] = st
	}
	meta, err := jsonColumn("metadata", in.Metadata, false)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		updates["metadata"] = meta
	}
	if len(updates) > 0 {
		updates["updated_at"] = s.now().UTC()
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.convRepo.UpdateFields(dbc, conversationID, updates); err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	c, err := s.convRepo.GetByID(dbc, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if c == nil {
		return nil, conversationNotFound()
	}
	return c, nil
}

// Delete marks the conversation deleted; rows stay for the workspace cascade.
func (s *conversationService) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.convRepo.UpdateFields(dbctx.Context{Ctx: ctx}, conversationID, map[string]any{
		"status":     types.ConversationDeleted,
		"updated_at": s.now().UTC(),
	})
}

func (s *conversationService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]*types.Message, error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.msgRepo.ListByConversation(dbctx.Context{Ctx: ctx}, conversationID)
}

func (s *conversationService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (*SendResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierr.Invalid("invalid_request", "Content is required")
	}
	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Status == types.ConversationArchived {
		return nil, apierr.Conflict(0, "conversation_archived", "Conversation is archived")
	}

	dbc := dbctx.Context{Ctx: ctx}
	a, err := s.assistantRepo.GetByID(dbc, conv.WorkspaceID, conv.AssistantID)
	if err != nil {
		return nil, fmt.Errorf("load assistant: %w", err)
	}
	if a == nil {
		return nil, assistantNotFound()
	}

	userMsg := &types.Message{
		ConversationID: conv.ID,
		Role:           types.MessageRoleUser,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.msgRepo.Create(dbc, userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	reply, meta, err := s.complete(ctx, a, content)
	if err != nil {
		s.log.Warn("Provider call failed", "conversation_id", conv.ID, "provider", a.Provider, "error", err)
		return nil, err
	}

	at := s.now().UTC()
	if !at.After(userMsg.CreatedAt) {
		at = userMsg.CreatedAt.Add(time.Microsecond)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	assistantMsg := &types.Message{
		ConversationID: conv.ID,
		Role:           types.MessageRoleAssistant,
		Content:        reply,
		Metadata:       datatypes.JSON(metaJSON),
		CreatedAt:      at,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.msgRepo.Create(txc, assistantMsg); err != nil {
			return err
		}
		if err := s.convRepo.Touch(txc, conv.ID, at); err != nil {
			return err
		}
		return s.assistantRepo.IncrementUsage(txc, a.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	res := &SendResult{UserMessage: userMsg, AssistantMessage: assistantMsg}
	s.publish(ctx, conv.ID, res)
	return res, nil
}

// complete asks the assistant's provider for a reply. Without a configured
// client the reply is a synthetic echo.
func (s *conversationService) complete(ctx context.Context, a *types.Assistant, content string) (string, map[string]any, error) {
	client, ok := s.providers.Get(string(a.Provider))
	if !ok {
		return "Echo: " + content, map[string]any{
			"synthetic": true,
			"demo_mode": true,
			"provider":  demoProvider,
		}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := client.Complete(callCtx, llm.Request{
		Model:     a.Model,
		System:    promptstyle.ComposeSystem(a.SystemPrompt, a.Instructions),
		Prompt:    content,
		MaxTokens: llm.DefaultMaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", nil, apierr.Provider("provider_timeout", err)
		}
		return "", nil, apierr.Provider("provider_error", err)
	}
	model := resp.Model
	if model == "" {
		model = a.Model
	}
	return resp.Content, map[string]any{
		"provider":          client.Provider(),
		"model":             model,
		"finish_reason":     resp.FinishReason,
		"prompt_tokens":     resp.PromptTokens,
		"completion_tokens": resp.CompletionTokens,
	}, nil
}

func (s *conversationService) publish(ctx context.Context, conversationID uuid.UUID, res *SendResult) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, realtime.Message{
		Channel: realtime.ConversationChannel(conversationID),
		Event:   realtime.EventMessageCreated,
		Data:    res,
		Source:  ctxutil.RealtimeOrigin(ctx),
	})
	if err != nil {
		s.log.Warn("Realtime publish failed", "conversation_id", conversationID, "error", err)
	}
}
