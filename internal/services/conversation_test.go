package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/platform/llm"
	"github.com/versatil/versatil-backend/internal/realtime"
)

type convFixture struct {
	h     *harness
	user  *AuthResult
	asst  *types.Assistant
	convo *types.Conversation
}

func newConvFixture(t *testing.T, opts harnessOpts, in AssistantInput) *convFixture {
	t.Helper()
	h := newHarness(t, opts)
	ctx := context.Background()
	u := h.register(t, "alice@example.com", "Alice Smith", "")
	if in.Name == "" {
		in.Name = "Helper"
	}
	a, err := h.asst.Create(ctx, u.User.ID, u.Workspace.ID, in)
	require.NoError(t, err)
	c, err := h.conv.Create(ctx, u.User.ID, u.Workspace.ID, ConversationInput{AssistantID: a.ID})
	require.NoError(t, err)
	return &convFixture{h: h, user: u, asst: a, convo: c}
}

func TestConversationService_DemoReply(t *testing.T) {
	f := newConvFixture(t, harnessOpts{}, AssistantInput{})
	ctx := context.Background()
	assert.Equal(t, "New Conversation", f.convo.Title)

	res, err := f.h.conv.SendMessage(ctx, f.user.User.ID, f.convo.ID, "Hello there")
	require.NoError(t, err)
	assert.Equal(t, types.MessageRoleUser, res.UserMessage.Role)
	assert.Equal(t, "Echo: Hello there", res.AssistantMessage.Content)
	assert.JSONEq(t, `{"synthetic":true,"demo_mode":true,"provider":"demo"}`, string(res.AssistantMessage.Metadata))

	msgs, err := f.h.conv.ListMessages(ctx, f.user.User.ID, f.convo.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, res.UserMessage.ID, msgs[0].ID)
	assert.Equal(t, res.AssistantMessage.ID, msgs[1].ID)

	got, err := f.h.conv.Get(ctx, f.user.User.ID, f.convo.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, res.AssistantMessage.CreatedAt, got.UpdatedAt, time.Millisecond)
	assert.False(t, got.UpdatedAt.Before(f.convo.UpdatedAt))

	a, err := f.h.asst.Get(ctx, f.user.User.ID, f.user.Workspace.ID, f.asst.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.UsageCount)
}

func TestConversationService_ProviderReply(t *testing.T) {
	fake := &fakeLLM{provider: llm.ProviderOpenAI, resp: &llm.Response{
		Content: "Hi Alice", Model: "gpt-4o", FinishReason: "stop", PromptTokens: 12, CompletionTokens: 3,
	}}
	f := newConvFixture(t, harnessOpts{clients: []llm.Client{fake}}, AssistantInput{
		Model:        "gpt-4o",
		SystemPrompt: "You help.",
		Instructions: "Answer in one line.",
	})

	res, err := f.h.conv.SendMessage(context.Background(), f.user.User.ID, f.convo.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi Alice", res.AssistantMessage.Content)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(res.AssistantMessage.Metadata, &meta))
	assert.Equal(t, "openai", meta["provider"])
	assert.Equal(t, "gpt-4o", meta["model"])
	assert.EqualValues(t, 3, meta["completion_tokens"])

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, "gpt-4o", call.Model)
	assert.Equal(t, "hello", call.Prompt)
	assert.Equal(t, llm.DefaultMaxTokens, call.MaxTokens)
	assert.Equal(t, "You help.\n\nAnswer in one line.", call.System)
}

func TestConversationService_ProviderFailureKeepsUserMessage(t *testing.T) {
	fake := &fakeLLM{provider: llm.ProviderAnthropic, err: errors.New("upstream 500")}
	f := newConvFixture(t, harnessOpts{clients: []llm.Client{fake}}, AssistantInput{Model: "claude-3-5-sonnet-20241022"})
	ctx := context.Background()

	_, err := f.h.conv.SendMessage(ctx, f.user.User.ID, f.convo.ID, "are you there?")
	requireAPIErr(t, err, http.StatusBadGateway, "provider_error")
	assert.Contains(t, err.Error(), "upstream 500")

	msgs, err := f.h.conv.ListMessages(ctx, f.user.User.ID, f.convo.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, types.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, "are you there?", msgs[0].Content)
}

func TestConversationService_ProviderTimeout(t *testing.T) {
	fake := &fakeLLM{provider: llm.ProviderOpenAI, block: true}
	f := newConvFixture(t, harnessOpts{clients: []llm.Client{fake}, providerTimeout: 20 * time.Millisecond}, AssistantInput{})

	_, err := f.h.conv.SendMessage(context.Background(), f.user.User.ID, f.convo.ID, "slow")
	requireAPIErr(t, err, http.StatusBadGateway, "provider_timeout")
}

func TestConversationService_Lifecycle(t *testing.T) {
	f := newConvFixture(t, harnessOpts{}, AssistantInput{})
	ctx := context.Background()
	userID, wsID := f.user.User.ID, f.user.Workspace.ID

	second, err := f.h.conv.Create(ctx, userID, wsID, ConversationInput{AssistantID: f.asst.ID, Title: "Second"})
	require.NoError(t, err)

	// A new message moves the older conversation to the top.
	_, err = f.h.conv.SendMessage(ctx, userID, f.convo.ID, "bump")
	require.NoError(t, err)
	list, err := f.h.conv.List(ctx, userID, wsID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, f.convo.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	archived := "archived"
	_, err = f.h.conv.Update(ctx, userID, second.ID, ConversationUpdate{Status: &archived})
	require.NoError(t, err)
	_, err = f.h.conv.SendMessage(ctx, userID, second.ID, "hi")
	requireAPIErr(t, err, http.StatusConflict, "conversation_archived")

	bad := "frozen"
	_, err = f.h.conv.Update(ctx, userID, second.ID, ConversationUpdate{Status: &bad})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_status")

	require.NoError(t, f.h.conv.Delete(ctx, userID, second.ID))
	_, err = f.h.conv.Get(ctx, userID, second.ID)
	requireAPIErr(t, err, http.StatusNotFound, "conversation_not_found")
	list, err = f.h.conv.List(ctx, userID, wsID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.h.conv.SendMessage(ctx, userID, f.convo.ID, "   ")
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_request")

	// Other members of the workspace do not see the conversation.
	bob := f.h.register(t, "bob@example.com", "Bob", "")
	_, err = f.h.ws.AddMember(ctx, userID, wsID, "bob@example.com", types.RoleMember)
	require.NoError(t, err)
	_, err = f.h.conv.Get(ctx, bob.User.ID, f.convo.ID)
	requireAPIErr(t, err, http.StatusNotFound, "conversation_not_found")
}

func TestConversationService_MissingAssistant(t *testing.T) {
	f := newConvFixture(t, harnessOpts{}, AssistantInput{})
	ctx := context.Background()

	require.NoError(t, f.h.db.Exec("DELETE FROM assistants WHERE id = ?", f.asst.ID).Error)
	_, err := f.h.conv.SendMessage(ctx, f.user.User.ID, f.convo.ID, "hello")
	requireAPIErr(t, err, http.StatusNotFound, "assistant_not_found")

	var n int64
	require.NoError(t, f.h.db.Table("messages").Count(&n).Error)
	assert.Zero(t, n)
}

func TestConversationService_PublishesToHub(t *testing.T) {
	f := newConvFixture(t, harnessOpts{}, AssistantInput{})
	channel := realtime.ConversationChannel(f.convo.ID)

	watcher := f.h.hub.NewClient(f.user.User.ID)
	f.h.hub.AddChannel(watcher, channel)
	sender := f.h.hub.NewClient(f.user.User.ID)
	f.h.hub.AddChannel(sender, channel)
	defer f.h.hub.CloseClient(watcher)
	defer f.h.hub.CloseClient(sender)

	ctx := ctxutil.WithRealtimeOrigin(context.Background(), sender.ID.String())
	res, err := f.h.conv.SendMessage(ctx, f.user.User.ID, f.convo.ID, "ping")
	require.NoError(t, err)

	select {
	case msg := <-watcher.Outbound:
		assert.Equal(t, realtime.EventMessageCreated, msg.Event)
		assert.Equal(t, channel, msg.Channel)
		got, ok := msg.Data.(*SendResult)
		require.True(t, ok)
		assert.Equal(t, res.AssistantMessage.ID, got.AssistantMessage.ID)
	case <-time.After(time.Second):
		t.Fatal("watcher received nothing")
	}
	select {
	case msg := <-sender.Outbound:
		t.Fatalf("originating client should be skipped, got %+v", msg)
	default:
	}
}
