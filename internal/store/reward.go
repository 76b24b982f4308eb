package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(s scanner) (*model.Reward, error) {
	var r model.Reward
	var desc sql.NullString
	var active int
	if err := s.Scan(&r.ID, &r.HouseholdID, &r.Name, &desc, &r.PointCost, &active, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Description = stringPtr(desc)
	r.IsActive = active != 0
	return &r, nil
}

const rewardCols = `id, household_id, name, description, point_cost, is_active, created_at`

func (s *RewardStore) Create(ctx context.Context, householdID, name string, description *string, pointCost int) (*model.Reward, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rewards (id, household_id, name, description, point_cost) VALUES (?, ?, ?, ?, ?)`,
		id, householdID, name, nullString(description), pointCost,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RewardStore) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// GetInHousehold returns the reward only if it belongs to householdID.
func (s *RewardStore) GetInHousehold(ctx context.Context, id, householdID string) (*model.Reward, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rewardCols+` FROM rewards WHERE id = ? AND household_id = ?`, id, householdID)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// List returns the household's active rewards, newest first.
func (s *RewardStore) List(ctx context.Context, householdID string) ([]model.Reward, error) {
	return s.list(ctx,
		`WHERE household_id = ? AND is_active = 1 ORDER BY created_at DESC, rowid DESC`, householdID)
}

// ListShop returns the household's active rewards, cheapest first.
func (s *RewardStore) ListShop(ctx context.Context, householdID string) ([]model.Reward, error) {
	return s.list(ctx,
		`WHERE household_id = ? AND is_active = 1 ORDER BY point_cost ASC, name ASC`, householdID)
}

func (s *RewardStore) list(ctx context.Context, where string, args ...any) ([]model.Reward, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rewardCols+` FROM rewards `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(ctx context.Context, r *model.Reward) (*model.Reward, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rewards SET name = ?, description = ?, point_cost = ?, is_active = ? WHERE id = ?`,
		r.Name, nullString(r.Description), r.PointCost, boolInt(r.IsActive), r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(ctx, r.ID)
}

// Deactivate soft-deletes a reward. Existing redemptions keep referencing it.
func (s *RewardStore) Deactivate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE rewards SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate reward: %w", err)
	}
	return nil
}
