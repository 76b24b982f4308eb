// Package store holds the SQLite repositories. It is the only package that
// issues SQL, and it owns every multi-row write so each one commits or
// rolls back as a unit.
package store

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale reports that a conditional update matched no row because the
	// row's state changed underneath the caller.
	ErrStale = errors.New("row state changed")
	// ErrAlreadyVerified reports an existing verification for an instance.
	ErrAlreadyVerified = errors.New("instance already verified")
	// ErrInsufficientPoints reports a redemption the balance cannot cover.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrHasHistory reports a child that cannot be deleted because ledger
	// entries reference it.
	ErrHasHistory = errors.New("child has points history")
	// ErrAlreadyMember reports a user who already belongs to a household.
	ErrAlreadyMember = errors.New("user already in a household")
)

type scanner interface{ Scan(...any) error }

func newID() string {
	return uuid.NewString()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
