package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/data/repos/testutil"
	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
)

func TestConversationRepoListOrder(t *testing.T) {
	db := testutil.DB(t)
	repo := NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := testutil.SeedUser(t, db, "conv@example.com")
	other := testutil.SeedUser(t, db, "other@example.com")
	ws := testutil.SeedWorkspace(t, db, u.ID, "conv")
	a := testutil.SeedAssistant(t, db, ws.ID, u.ID, "gpt-4")

	c1 := testutil.SeedConversation(t, db, ws.ID, a.ID, u.ID)
	c2 := testutil.SeedConversation(t, db, ws.ID, a.ID, u.ID)
	c3 := testutil.SeedConversation(t, db, ws.ID, a.ID, u.ID)
	testutil.SeedConversation(t, db, ws.ID, a.ID, other.ID)

	base := time.Now().UTC()
	if err := repo.Touch(dbc, c1.ID, base.Add(3*time.Second)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := repo.Touch(dbc, c2.ID, base.Add(1*time.Second)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := repo.Touch(dbc, c3.ID, base.Add(2*time.Second)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := repo.UpdateFields(dbc, c2.ID, map[string]any{"status": types.ConversationDeleted}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := repo.ListByWorkspace(dbc, ws.ID, u.ID, types.ConversationDeleted)
	if err != nil {
		t.Fatalf("ListByWorkspace: %v", err)
	}
	if len(got) != 2 || got[0].ID != c1.ID || got[1].ID != c3.ID {
		t.Fatalf("ListByWorkspace: unexpected order %+v", got)
	}

	all, err := repo.ListByWorkspace(dbc, ws.ID, u.ID, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByWorkspace (all): %d err=%v", len(all), err)
	}
}

func TestMessageRepoOrderAndDelete(t *testing.T) {
	db := testutil.DB(t)
	convs := NewConversationRepo(db, testutil.Logger(t))
	msgs := NewMessageRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := testutil.SeedUser(t, db, "msg@example.com")
	ws := testutil.SeedWorkspace(t, db, u.ID, "msg")
	a := testutil.SeedAssistant(t, db, ws.ID, u.ID, "gpt-4")
	c := testutil.SeedConversation(t, db, ws.ID, a.ID, u.ID)

	base := time.Now().UTC()
	for i, content := range []string{"first", "second", "third"} {
		m := &types.Message{
			ConversationID: c.ID,
			Role:           types.MessageRoleUser,
			Content:        content,
			CreatedAt:      base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := msgs.Create(dbc, m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := msgs.ListByConversation(dbc, c.ID)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(got) != 3 || got[0].Content != "first" || got[2].Content != "third" {
		t.Fatalf("ListByConversation: unexpected %+v", got)
	}

	ids, err := convs.IDsByAssistant(dbc, a.ID)
	if err != nil || len(ids) != 1 {
		t.Fatalf("IDsByAssistant: %v err=%v", ids, err)
	}
	if err := msgs.DeleteByConversationIDs(dbc, ids); err != nil {
		t.Fatalf("DeleteByConversationIDs: %v", err)
	}
	if err := convs.DeleteByIDs(dbc, ids); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	n, err := msgs.CountByConversationIDs(dbc, ids)
	if err != nil || n != 0 {
		t.Fatalf("CountByConversationIDs: %d err=%v", n, err)
	}
	gone, err := convs.GetByID(dbc, c.ID)
	if err != nil || gone != nil {
		t.Fatalf("GetByID after delete: %+v err=%v", gone, err)
	}

	if err := msgs.DeleteByConversationIDs(dbc, []uuid.UUID{}); err != nil {
		t.Fatalf("DeleteByConversationIDs (empty): %v", err)
	}
}
