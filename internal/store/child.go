package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(s scanner) (*model.Child, error) {
	var c model.Child
	var avatar sql.NullString
	if err := s.Scan(&c.ID, &c.HouseholdID, &c.Name, &avatar, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Avatar = stringPtr(avatar)
	return &c, nil
}

const childCols = `id, household_id, name, avatar, created_at`

// Create adds a child. A name already used in the household returns
// ErrDuplicate.
func (s *ChildStore) Create(ctx context.Context, householdID, name string, avatar *string, pinHash string) (*model.Child, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO children (id, household_id, name, avatar, pin_hash) VALUES (?, ?, ?, ?, ?)`,
		id, householdID, name, nullString(avatar), pinHash,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChildStore) GetByID(ctx context.Context, id string) (*model.Child, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// GetInHousehold returns the child only if it belongs to householdID.
func (s *ChildStore) GetInHousehold(ctx context.Context, id, householdID string) (*model.Child, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+childCols+` FROM children WHERE id = ? AND household_id = ?`, id, householdID)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// GetCredentials returns the child and PIN hash for a name in a household.
func (s *ChildStore) GetCredentials(ctx context.Context, householdID, name string) (*model.Child, string, error) {
	var c model.Child
	var avatar sql.NullString
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT `+childCols+`, pin_hash FROM children WHERE household_id = ? AND name = ?`,
		householdID, name,
	).Scan(&c.ID, &c.HouseholdID, &c.Name, &avatar, &c.CreatedAt, &hash)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get child credentials: %w", err)
	}
	c.Avatar = stringPtr(avatar)
	return &c, hash, nil
}

func (s *ChildStore) ListByHousehold(ctx context.Context, householdID string) ([]model.Child, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+childCols+` FROM children WHERE household_id = ? ORDER BY name ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	children := []model.Child{}
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

// Update replaces name and avatar, and the PIN hash when pinHash is non-nil.
func (s *ChildStore) Update(ctx context.Context, id, name string, avatar *string, pinHash *string) (*model.Child, error) {
	var err error
	if pinHash != nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE children SET name = ?, avatar = ?, pin_hash = ? WHERE id = ?`,
			name, nullString(avatar), *pinHash, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE children SET name = ?, avatar = ? WHERE id = ?`,
			name, nullString(avatar), id)
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a child and its chore instances. A child with ledger
// entries returns ErrHasHistory.
func (s *ChildStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM points_transactions WHERE child_id = ?)
		      + (SELECT COUNT(*) FROM redemptions WHERE child_id = ?)`,
		id, id,
	).Scan(&n); err != nil {
		return fmt.Errorf("check child history: %w", err)
	}
	if n > 0 {
		return ErrHasHistory
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return tx.Commit()
}
