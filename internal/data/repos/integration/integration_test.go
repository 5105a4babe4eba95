package integration

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/versatil/versatil-backend/internal/data/repos/testutil"
	types "github.com/versatil/versatil-backend/internal/domain"
	intdomain "github.com/versatil/versatil-backend/internal/domain/integration"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
)

func TestIntegrationUpsertKeepsOneRow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewIntegrationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := testutil.SeedUser(t, db, "int@example.com")
	ws := testutil.SeedWorkspace(t, db, u.ID, "int")

	first, err := repo.Upsert(dbc, &types.Integration{
		WorkspaceID: ws.ID, UserID: u.ID, Provider: intdomain.ProviderGoogleDrive,
		Credentials: datatypes.JSON(`{"access_token":"a"}`),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := repo.Upsert(dbc, &types.Integration{
		WorkspaceID: ws.ID, UserID: u.ID, Provider: intdomain.ProviderGoogleDrive,
		Status: intdomain.StatusConnected, AccountEmail: "int@example.com",
		Credentials: datatypes.JSON(`{"access_token":"b"}`),
	})
	if err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("Upsert: expected same row, got %s and %s", first.ID, second.ID)
	}
	if second.AccountEmail != "int@example.com" || string(second.Credentials) != `{"access_token":"b"}` {
		t.Fatalf("Upsert: fields not refreshed: %+v", second)
	}
	list, err := repo.ListByWorkspace(dbc, ws.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByWorkspace: %d err=%v", len(list), err)
	}
}

func TestDocumentUpsert(t *testing.T) {
	db := testutil.DB(t)
	ints := NewIntegrationRepo(db, testutil.Logger(t))
	docs := NewDocumentRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := testutil.SeedUser(t, db, "doc@example.com")
	ws := testutil.SeedWorkspace(t, db, u.ID, "doc")
	in, err := ints.Upsert(dbc, &types.Integration{WorkspaceID: ws.ID, UserID: u.ID, Provider: intdomain.ProviderGoogleDrive})
	if err != nil {
		t.Fatalf("Upsert integration: %v", err)
	}

	stored, err := docs.Upsert(dbc, []*types.Document{
		{WorkspaceID: ws.ID, IntegrationID: in.ID, ExternalID: "f1", Title: "One", Content: "v1", SourceType: intdomain.SourceGoogleDoc},
		{WorkspaceID: ws.ID, IntegrationID: in.ID, ExternalID: "f2", Title: "Two", Content: "x", SourceType: intdomain.SourcePDF},
	})
	if err != nil || len(stored) != 2 {
		t.Fatalf("Upsert: %d err=%v", len(stored), err)
	}
	firstID := stored[0].ID

	again, err := docs.Upsert(dbc, []*types.Document{
		{WorkspaceID: ws.ID, IntegrationID: in.ID, ExternalID: "f1", Title: "One", Content: "v2", SourceType: intdomain.SourceGoogleDoc},
	})
	if err != nil || len(again) != 1 {
		t.Fatalf("Upsert (again): %d err=%v", len(again), err)
	}
	if again[0].ID != firstID || again[0].Content != "v2" {
		t.Fatalf("Upsert: expected refreshed row %s, got %+v", firstID, again[0])
	}

	list, err := docs.ListByWorkspace(dbc, ws.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByWorkspace: %d err=%v", len(list), err)
	}
	one, err := docs.GetByID(dbc, ws.ID, firstID)
	if err != nil || one == nil || one.Content != "v2" {
		t.Fatalf("GetByID: %+v err=%v", one, err)
	}
}
