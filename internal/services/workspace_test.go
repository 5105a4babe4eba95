package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/versatil/versatil-backend/internal/domain"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-labs", Slugify("  Acme Labs "))
	assert.Equal(t, "x", Slugify("X"))
	assert.Equal(t, "", Slugify("   "))
}

func TestWorkspaceService_TenancyIsolation(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()

	alice := h.register(t, "alice@example.com", "Alice", "")
	mallory := h.register(t, "mallory@example.com", "Mallory", "")

	_, err := h.ws.Get(ctx, mallory.User.ID, alice.Workspace.ID)
	requireAPIErr(t, err, http.StatusForbidden, "forbidden")
	_, err = h.asst.List(ctx, mallory.User.ID, alice.Workspace.ID)
	requireAPIErr(t, err, http.StatusForbidden, "forbidden")
	_, err = h.conv.List(ctx, mallory.User.ID, alice.Workspace.ID)
	requireAPIErr(t, err, http.StatusForbidden, "forbidden")
	_, err = h.integ.ListDocuments(ctx, mallory.User.ID, alice.Workspace.ID)
	requireAPIErr(t, err, http.StatusForbidden, "forbidden")

	_, err = h.ws.Get(ctx, uuid.New(), alice.Workspace.ID)
	requireAPIErr(t, err, http.StatusUnauthorized, "unknown_subject")

	list, err := h.ws.List(ctx, alice.User.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alice.Workspace.ID, list[0].ID)
}

func TestWorkspaceService_CreateUpdate(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	alice := h.register(t, "alice@example.com", "Alice", "")

	ws, err := h.ws.Create(ctx, alice.User.ID, WorkspaceInput{Name: "Research Team", Description: "R&D"})
	require.NoError(t, err)
	assert.Equal(t, "research-team", ws.Slug)
	assert.Equal(t, alice.User.ID, ws.OwnerID)

	_, err = h.ws.Create(ctx, alice.User.ID, WorkspaceInput{Name: "research team"})
	requireAPIErr(t, err, http.StatusConflict, "slug_conflict")

	_, err = h.ws.Create(ctx, alice.User.ID, WorkspaceInput{Name: "  "})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_workspace_name")

	name := "Research"
	updated, err := h.ws.Update(ctx, alice.User.ID, ws.ID, WorkspaceUpdate{
		Name:     &name,
		Settings: json.RawMessage(`{"theme":"dark"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Research", updated.Name)
	assert.Equal(t, "research-team", updated.Slug)
	assert.JSONEq(t, `{"theme":"dark"}`, string(updated.Settings))

	_, err = h.ws.Update(ctx, alice.User.ID, ws.ID, WorkspaceUpdate{Settings: json.RawMessage(`[1]`)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_settings")

	list, err := h.ws.List(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestWorkspaceService_Members(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()

	alice := h.register(t, "alice@example.com", "Alice", "")
	bob := h.register(t, "bob@example.com", "Bob", "")
	carol := h.register(t, "carol@example.com", "Carol", "")
	wsID := alice.Workspace.ID

	ws, err := h.ws.AddMember(ctx, alice.User.ID, wsID, "BOB@example.com", types.RoleMember)
	require.NoError(t, err)
	assert.Len(t, ws.Members, 2)

	// Membership alone grants resource access.
	_, err = h.ws.Get(ctx, bob.User.ID, wsID)
	require.NoError(t, err)

	_, err = h.ws.AddMember(ctx, alice.User.ID, wsID, "bob@example.com", types.RoleAdmin)
	requireAPIErr(t, err, http.StatusConflict, "already_member")
	_, err = h.ws.AddMember(ctx, alice.User.ID, wsID, "carol@example.com", types.RoleOwner)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_role")
	_, err = h.ws.AddMember(ctx, alice.User.ID, wsID, "ghost@example.com", types.RoleMember)
	requireAPIErr(t, err, http.StatusNotFound, "user_not_found")

	// Plain members cannot administer the workspace.
	_, err = h.ws.AddMember(ctx, bob.User.ID, wsID, "carol@example.com", types.RoleMember)
	requireAPIErr(t, err, http.StatusForbidden, "insufficient_role")
	err = h.ws.Delete(ctx, bob.User.ID, wsID)
	requireAPIErr(t, err, http.StatusForbidden, "insufficient_role")

	_, err = h.ws.RemoveMember(ctx, alice.User.ID, wsID, alice.User.ID)
	requireAPIErr(t, err, http.StatusBadRequest, "cannot_remove_owner")
	_, err = h.ws.RemoveMember(ctx, alice.User.ID, wsID, carol.User.ID)
	requireAPIErr(t, err, http.StatusNotFound, "member_not_found")

	ws, err = h.ws.RemoveMember(ctx, alice.User.ID, wsID, bob.User.ID)
	require.NoError(t, err)
	assert.Len(t, ws.Members, 1)
	_, err = h.ws.Get(ctx, bob.User.ID, wsID)
	requireAPIErr(t, err, http.StatusForbidden, "forbidden")
}

func TestWorkspaceService_DeleteCascades(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	alice := h.register(t, "alice@example.com", "Alice", "")
	wsID := alice.Workspace.ID

	a, err := h.asst.Create(ctx, alice.User.ID, wsID, AssistantInput{Name: "Helper"})
	require.NoError(t, err)
	c, err := h.conv.Create(ctx, alice.User.ID, wsID, ConversationInput{AssistantID: a.ID})
	require.NoError(t, err)
	_, err = h.conv.SendMessage(ctx, alice.User.ID, c.ID, "hello")
	require.NoError(t, err)
	start, err := h.integ.StartGoogle(ctx, alice.User.ID, wsID)
	require.NoError(t, err)
	integ, err := h.integ.CompleteGoogle(ctx, DemoAuthCode, start.State)
	require.NoError(t, err)
	_, err = h.integ.Sync(ctx, alice.User.ID, integ.ID)
	require.NoError(t, err)

	require.NoError(t, h.ws.Delete(ctx, alice.User.ID, wsID))

	for _, table := range []string{"workspaces", "workspace_members", "assistants", "conversations", "messages", "integrations", "documents"} {
		var n int64
		require.NoError(t, h.db.Table(table).Count(&n).Error)
		assert.Zero(t, n, "table %s should be empty", table)
	}
}
