package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(s scanner) (*model.Household, error) {
	var h model.Household
	if err := s.Scan(&h.ID, &h.Name, &h.InviteCode, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, invite_code, created_at`

// CreateWithAdmin creates a household and makes userID its ADMIN in one
// transaction. ErrAlreadyMember means the user belongs to a household;
// ErrDuplicate means the invite code is taken.
func (s *HouseholdStore) CreateWithAdmin(ctx context.Context, name, inviteCode, userID string) (*model.Household, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM household_members WHERE user_id = ?`, userID,
	).Scan(&n); err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if n > 0 {
		return nil, ErrAlreadyMember
	}

	id := newID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO households (id, name, invite_code) VALUES (?, ?, ?)`,
		id, name, inviteCode,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO household_members (id, household_id, user_id, role) VALUES (?, ?, ?, ?)`,
		newID(), id, userID, model.RoleAdmin,
	); err != nil {
		return nil, fmt.Errorf("insert admin member: %w", err)
	}

	h, err := scanHousehold(tx.QueryRowContext(ctx,
		`SELECT `+householdCols+` FROM households WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByID(ctx context.Context, id string) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByInviteCode(ctx context.Context, code string) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE invite_code = ?`, code)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by invite code: %w", err)
	}
	return h, nil
}

// ListIDs returns every household ID.
func (s *HouseholdStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM households ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list household ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan household id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMember adds a user to a household. ErrAlreadyMember means the user
// already belongs to one.
func (s *HouseholdStore) AddMember(ctx context.Context, householdID, userID, role string) (*model.HouseholdMember, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO household_members (id, household_id, user_id, role) VALUES (?, ?, ?, ?)`,
		id, householdID, userID, role,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	var m model.HouseholdMember
	err = s.db.QueryRowContext(ctx,
		`SELECT id, household_id, user_id, role, created_at FROM household_members WHERE id = ?`, id,
	).Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

// MembershipForUser returns the user's household membership, or nil.
func (s *HouseholdStore) MembershipForUser(ctx context.Context, userID string) (*model.Membership, error) {
	var m model.Membership
	err := s.db.QueryRowContext(ctx,
		`SELECT h.id, h.name, h.invite_code, hm.role
		 FROM household_members hm
		 JOIN households h ON h.id = hm.household_id
		 WHERE hm.user_id = ?`,
		userID,
	).Scan(&m.HouseholdID, &m.Name, &m.InviteCode, &m.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// ListMembers returns the household's members with their user profiles.
func (s *HouseholdStore) ListMembers(ctx context.Context, householdID string) ([]model.HouseholdMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hm.id, hm.household_id, hm.user_id, hm.role, hm.created_at,
		        u.id, u.email, u.name, u.created_at
		 FROM household_members hm
		 JOIN users u ON u.id = hm.user_id
		 WHERE hm.household_id = ?
		 ORDER BY hm.created_at ASC, hm.rowid ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		var m model.HouseholdMember
		var u model.User
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt,
			&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

// ParentIDs returns the user IDs of every parent in the household.
func (s *HouseholdStore) ParentIDs(ctx context.Context, householdID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM household_members WHERE household_id = ?`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list parent ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan parent id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
