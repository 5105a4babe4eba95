package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a duplicate-key failure. When names
// are given, the violated constraint must match one of them: the Postgres index
// name (e.g. "idx_users_email") or the SQLite column form ("users.email").
func IsUniqueViolation(err error, names ...string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return matches(pgErr.ConstraintName, names)
	}
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		return matches(msg[i+len("UNIQUE constraint failed: "):], names)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return len(names) == 0
	}
	return false
}

func matches(got string, names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if n != "" && strings.Contains(got, n) {
			return true
		}
	}
	return false
}
