package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
)

func SeedUser(tb testing.TB, db *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{Email: email, Password: "x", Name: "Test User"}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedWorkspace creates a workspace owned by ownerID with the owner as a member.
func SeedWorkspace(tb testing.TB, db *gorm.DB, ownerID uuid.UUID, slug string) *types.Workspace {
	tb.Helper()
	ws := &types.Workspace{Name: slug, Slug: slug, OwnerID: ownerID}
	if err := db.Create(ws).Error; err != nil {
		tb.Fatalf("seed workspace: %v", err)
	}
	m := &types.WorkspaceMember{WorkspaceID: ws.ID, UserID: ownerID, Role: types.RoleOwner}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	ws.Members = []types.WorkspaceMember{*m}
	return ws
}

func SeedAssistant(tb testing.TB, db *gorm.DB, workspaceID, createdBy uuid.UUID, model string) *types.Assistant {
	tb.Helper()
	a := &types.Assistant{WorkspaceID: workspaceID, Name: "Helper", Model: model, CreatedBy: createdBy}
	if err := db.Create(a).Error; err != nil {
		tb.Fatalf("seed assistant: %v", err)
	}
	return a
}

func SeedConversation(tb testing.TB, db *gorm.DB, workspaceID, assistantID, userID uuid.UUID) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{WorkspaceID: workspaceID, AssistantID: assistantID, UserID: userID}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}
