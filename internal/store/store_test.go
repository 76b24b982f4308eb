package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dukerupert/chorestore/internal/database"
	"github.com/dukerupert/chorestore/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// setupFileTestDB opens a file-backed database so several connections can
// contend for the write lock.
func setupFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	db        *sql.DB
	user      *model.User
	household *model.Household
	child     *model.Child
}

// newFixture creates a parent, their household and one child.
func newFixture(t *testing.T, db *sql.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	u, err := NewUserStore(db).Create(ctx, "parent@example.com", "Pat", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	h, err := NewHouseholdStore(db).CreateWithAdmin(ctx, "Smiths", "ABCD1234", u.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	c, err := NewChildStore(db).Create(ctx, h.ID, "Sam", nil, "pinhash")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return &fixture{db: db, user: u, household: h, child: c}
}

func (f *fixture) template(t *testing.T, title string, points int, rec model.Recurrence) *model.ChoreTemplate {
	t.Helper()
	tmpl, err := NewTemplateStore(f.db).Create(context.Background(), f.household.ID, title, nil, points, rec)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tmpl
}

// earn runs an instance through submit and approval so the child is
// credited with points.
func (f *fixture) earn(t *testing.T, points int) {
	t.Helper()
	ctx := context.Background()
	is := NewInstanceStore(f.db)
	tmpl := f.template(t, "Chore", points, model.RecurrenceNone)
	ci, err := is.Create(ctx, tmpl.ID, f.child.ID, "2024-01-01")
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}
	if _, err := is.Submit(ctx, ci.ID, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := is.Verify(ctx, ci.ID, f.user.ID, model.ChoreApproved, nil); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
