package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

type RedemptionStore struct {
	db *sql.DB
}

func NewRedemptionStore(db *sql.DB) *RedemptionStore {
	return &RedemptionStore{db: db}
}

const redemptionSelect = `SELECT
	rd.id, rd.child_id, rd.reward_id, rd.status, rd.created_at, rd.updated_at,
	r.id, r.household_id, r.name, r.description, r.point_cost, r.is_active, r.created_at,
	c.id, c.household_id, c.name, c.avatar, c.created_at
FROM redemptions rd
JOIN rewards r ON r.id = rd.reward_id
JOIN children c ON c.id = rd.child_id`

func scanRedemption(s scanner) (*model.Redemption, error) {
	var rd model.Redemption
	var r model.Reward
	var c model.Child
	var rDesc, cAvatar sql.NullString
	var rActive int
	err := s.Scan(
		&rd.ID, &rd.ChildID, &rd.RewardID, &rd.Status, &rd.CreatedAt, &rd.UpdatedAt,
		&r.ID, &r.HouseholdID, &r.Name, &rDesc, &r.PointCost, &rActive, &r.CreatedAt,
		&c.ID, &c.HouseholdID, &c.Name, &cAvatar, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Description = stringPtr(rDesc)
	r.IsActive = rActive != 0
	c.Avatar = stringPtr(cAvatar)
	rd.Reward = &r
	rd.Child = &c
	return &rd, nil
}

// Create spends reward.PointCost from the child's balance and records a
// REQUESTED redemption. The balance is read after the transaction has taken
// the database write lock, so concurrent spends cannot both pass the check.
// ErrInsufficientPoints leaves the database untouched.
func (s *RedemptionStore) Create(ctx context.Context, childID string, reward *model.Reward) (*model.Redemption, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var balance int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM points_transactions WHERE child_id = ?`, childID,
	).Scan(&balance); err != nil {
		return nil, fmt.Errorf("sum balance: %w", err)
	}
	if balance < reward.PointCost {
		return nil, ErrInsufficientPoints
	}

	id := newID()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO redemptions (id, child_id, reward_id, status) VALUES (?, ?, ?, ?)`,
		id, childID, reward.ID, string(model.RedemptionRequested),
	); err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	if err := insertTransaction(ctx, tx, childID, -reward.PointCost, model.PointsSpent, reward.Name, nil, &id); err != nil {
		return nil, err
	}

	rd, err := scanRedemption(tx.QueryRowContext(ctx, redemptionSelect+` WHERE rd.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redemption: %w", err)
	}
	return rd, nil
}

func (s *RedemptionStore) GetByID(ctx context.Context, id string) (*model.Redemption, error) {
	rd, err := scanRedemption(s.db.QueryRowContext(ctx, redemptionSelect+` WHERE rd.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	return rd, nil
}

// ListForChild returns the child's redemptions, newest first.
func (s *RedemptionStore) ListForChild(ctx context.Context, childID string) ([]model.Redemption, error) {
	return s.list(ctx, `WHERE rd.child_id = ? ORDER BY rd.created_at DESC, rd.rowid DESC`, childID)
}

// ListForHousehold returns redemptions by any child of the household,
// newest first.
func (s *RedemptionStore) ListForHousehold(ctx context.Context, householdID string) ([]model.Redemption, error) {
	return s.list(ctx, `WHERE c.household_id = ? ORDER BY rd.created_at DESC, rd.rowid DESC`, householdID)
}

func (s *RedemptionStore) list(ctx context.Context, where string, args ...any) ([]model.Redemption, error) {
	rows, err := s.db.QueryContext(ctx, redemptionSelect+` `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	out := []model.Redemption{}
	for rows.Next() {
		rd, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		out = append(out, *rd)
	}
	return out, rows.Err()
}

// UpdateStatus moves a redemption from one status to another. ErrStale
// means it was no longer in the from status.
func (s *RedemptionStore) UpdateStatus(ctx context.Context, id string, from, to model.RedemptionStatus) (*model.Redemption, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE redemptions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("update redemption status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrStale
	}
	return s.GetByID(ctx, id)
}
