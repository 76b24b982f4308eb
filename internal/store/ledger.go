package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/chorestore/internal/model"
)

// LedgerStore reads the points ledger. Entries are written only by the
// verification and redemption transactions through insertTransaction.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const transactionCols = `id, child_id, amount, type, reason, chore_instance_id, redemption_id, created_at`

func scanTransaction(s scanner) (*model.PointsTransaction, error) {
	var p model.PointsTransaction
	var instanceID, redemptionID sql.NullString
	err := s.Scan(&p.ID, &p.ChildID, &p.Amount, &p.Type, &p.Reason, &instanceID, &redemptionID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ChoreInstanceID = stringPtr(instanceID)
	p.RedemptionID = stringPtr(redemptionID)
	return &p, nil
}

// Balance is the sum of every ledger entry for the child; zero when none.
func (s *LedgerStore) Balance(ctx context.Context, childID string) (int, error) {
	var balance int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM points_transactions WHERE child_id = ?`, childID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("sum balance: %w", err)
	}
	return balance, nil
}

// Summary returns earned, spent and balance totals for one child.
func (s *LedgerStore) Summary(ctx context.Context, childID string) (*model.PointBalance, error) {
	var b model.PointBalance
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.name,
		        COALESCE(SUM(CASE WHEN p.amount > 0 THEN p.amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN p.amount < 0 THEN -p.amount ELSE 0 END), 0),
		        COALESCE(SUM(p.amount), 0)
		 FROM children c
		 LEFT JOIN points_transactions p ON p.child_id = c.id
		 WHERE c.id = ?
		 GROUP BY c.id, c.name`,
		childID,
	).Scan(&b.ChildID, &b.ChildName, &b.TotalEarned, &b.TotalSpent, &b.Balance)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("points summary: %w", err)
	}
	return &b, nil
}

// Leaderboard returns a summary for every child in the household, highest
// balance first.
func (s *LedgerStore) Leaderboard(ctx context.Context, householdID string) ([]model.PointBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name,
		        COALESCE(SUM(CASE WHEN p.amount > 0 THEN p.amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN p.amount < 0 THEN -p.amount ELSE 0 END), 0),
		        COALESCE(SUM(p.amount), 0) AS balance
		 FROM children c
		 LEFT JOIN points_transactions p ON p.child_id = c.id
		 WHERE c.household_id = ?
		 GROUP BY c.id, c.name
		 ORDER BY balance DESC, c.name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	board := []model.PointBalance{}
	for rows.Next() {
		var b model.PointBalance
		if err := rows.Scan(&b.ChildID, &b.ChildName, &b.TotalEarned, &b.TotalSpent, &b.Balance); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		board = append(board, b)
	}
	return board, rows.Err()
}

// ListForChild returns the child's ledger, newest first.
func (s *LedgerStore) ListForChild(ctx context.Context, childID string) ([]model.PointsTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionCols+` FROM points_transactions
		 WHERE child_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []model.PointsTransaction{}
	for rows.Next() {
		p, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *p)
	}
	return txs, rows.Err()
}

func insertTransaction(ctx context.Context, tx *sql.Tx, childID string, amount int, typ model.PointsType, reason string, instanceID, redemptionID *string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO points_transactions (id, child_id, amount, type, reason, chore_instance_id, redemption_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newID(), childID, amount, string(typ), reason, nullString(instanceID), nullString(redemptionID),
	)
	if err != nil {
		return fmt.Errorf("insert points transaction: %w", err)
	}
	return nil
}
