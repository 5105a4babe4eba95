package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pg := fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_workspaces_slug"})
	assert.True(t, IsUniqueViolation(pg))
	assert.True(t, IsUniqueViolation(pg, "idx_workspaces_slug"))
	assert.False(t, IsUniqueViolation(pg, "idx_users_email"))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "idx_workspaces_slug"}
	assert.False(t, IsUniqueViolation(fk))

	lite := errors.New("UNIQUE constraint failed: users.email")
	assert.True(t, IsUniqueViolation(lite, "idx_users_email", "users.email"))
	assert.False(t, IsUniqueViolation(lite, "workspaces.slug"))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
