package user

import (
	"context"
	"testing"

	"github.com/versatil/versatil-backend/internal/data/repos/testutil"
	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/dberr"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := &types.User{Email: "userrepo@example.com", Password: "pw", Name: "A B"}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ws := testutil.SeedWorkspace(t, db, u.ID, "userrepo")

	got, err := repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Email != u.Email {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}
	if !got.HasWorkspace(ws.ID) || len(got.Workspaces) != 1 {
		t.Fatalf("GetByID: expected membership in %s, got %v", ws.ID, got.Workspaces)
	}

	byEmail, err := repo.GetByEmail(dbc, u.Email)
	if err != nil || byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: %+v err=%v", byEmail, err)
	}

	missing, err := repo.GetByEmail(dbc, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("GetByEmail (missing): %+v err=%v", missing, err)
	}

	exists, err := repo.EmailExists(dbc, u.Email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: %v err=%v", exists, err)
	}

	dup := &types.User{Email: u.Email, Password: "pw", Name: "Dup"}
	err = repo.Create(dbc, dup)
	if !dberr.IsUniqueViolation(err, "idx_users_email", "users.email") {
		t.Fatalf("Create duplicate: expected unique violation, got %v", err)
	}

	if err := repo.UpdateAvatarFields(dbc, u.ID, "avatars/x.png", "https://cdn/x.png"); err != nil {
		t.Fatalf("UpdateAvatarFields: %v", err)
	}
	got, _ = repo.GetByID(dbc, u.ID)
	if got.AvatarURL != "https://cdn/x.png" || got.AvatarBucketKey != "avatars/x.png" {
		t.Fatalf("UpdateAvatarFields: unexpected %+v", got)
	}
}
