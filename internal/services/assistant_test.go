package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/versatil/versatil-backend/internal/domain"
)

func TestAssistantService_CreateResolvesProvider(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	alice := h.register(t, "alice@example.com", "Alice", "")
	wsID := alice.Workspace.ID

	def, err := h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Default"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", def.Model)
	assert.Equal(t, types.ProviderOpenAI, def.Provider)
	assert.Equal(t, "You are a helpful AI assistant.", def.SystemPrompt)
	assert.Equal(t, "chat", string(def.Type))
	assert.JSONEq(t, `[]`, string(def.Tools))

	claude, err := h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{
		Name:  "Claude",
		Model: "claude-sonnet-4-20250514",
		Type:  "analysis",
		Tools: json.RawMessage(`[{"name":"search"}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, types.ProviderAnthropic, claude.Provider)

	_, err = h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Bad", Type: "robot"})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_assistant_type")
	_, err = h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Bad", Tools: json.RawMessage(`{}`)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_tools")
	_, err = h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: " "})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_request")

	list, err := h.asst.List(ctx, alice.User.ID, wsID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAssistantService_UpdateRecomputesProvider(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	alice := h.register(t, "alice@example.com", "Alice", "")
	wsID := alice.Workspace.ID

	a, err := h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Helper", Model: "gpt-4o"})
	require.NoError(t, err)

	model := "claude-3-5-haiku-20241022"
	prompt := "Be brief."
	updated, err := h.asst.Update(ctx, alice.User.ID, wsID, a.ID, AssistantUpdate{Model: &model, SystemPrompt: &prompt})
	require.NoError(t, err)
	assert.Equal(t, model, updated.Model)
	assert.Equal(t, types.ProviderAnthropic, updated.Provider)
	assert.Equal(t, prompt, updated.SystemPrompt)
	assert.Equal(t, "Helper", updated.Name)

	// Another workspace cannot reach the assistant by id.
	bob := h.register(t, "bob@example.com", "Bob", "")
	_, err = h.asst.Get(ctx, bob.User.ID, bob.Workspace.ID, a.ID)
	requireAPIErr(t, err, http.StatusNotFound, "assistant_not_found")
}

func TestAssistantService_DeleteLeavesNoOrphans(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	alice := h.register(t, "alice@example.com", "Alice", "")
	wsID := alice.Workspace.ID

	doomed, err := h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Doomed"})
	require.NoError(t, err)
	kept, err := h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Kept"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		c, err := h.conv.Create(ctx, alice.User.ID, wsID, ConversationInput{AssistantID: doomed.ID})
		require.NoError(t, err)
		_, err = h.conv.SendMessage(ctx, alice.User.ID, c.ID, "hi")
		require.NoError(t, err)
	}
	keptConv, err := h.conv.Create(ctx, alice.User.ID, wsID, ConversationInput{AssistantID: kept.ID})
	require.NoError(t, err)
	_, err = h.conv.SendMessage(ctx, alice.User.ID, keptConv.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, h.asst.Delete(ctx, alice.User.ID, wsID, doomed.ID))

	var convs, msgs, orphans int64
	require.NoError(t, h.db.Table("conversations").Where("assistant_id = ?", doomed.ID).Count(&convs).Error)
	require.NoError(t, h.db.Table("messages").Count(&msgs).Error)
	require.NoError(t, h.db.Table("messages").
		Where("conversation_id NOT IN (?)", h.db.Table("conversations").Select("id")).
		Count(&orphans).Error)
	assert.Zero(t, convs)
	assert.Equal(t, int64(2), msgs, "only the kept conversation's messages remain")
	assert.Zero(t, orphans)

	err = h.asst.Delete(ctx, alice.User.ID, wsID, doomed.ID)
	requireAPIErr(t, err, http.StatusNotFound, "assistant_not_found")
}
