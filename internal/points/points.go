// Package points reads the append-only points ledger. Entries are written
// only when a chore is approved or a reward is redeemed.
package points

import (
	"context"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/store"
)

type Service struct {
	ledger   *store.LedgerStore
	children *store.ChildStore
}

func NewService(ledger *store.LedgerStore, children *store.ChildStore) *Service {
	return &Service{ledger: ledger, children: children}
}

// Summary returns the child's earned, spent and balance totals.
func (s *Service) Summary(ctx context.Context, childID, householdID string) (*model.PointBalance, error) {
	if err := s.checkChild(ctx, childID, householdID); err != nil {
		return nil, err
	}
	b, err := s.ledger.Summary(ctx, childID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound("Child not found")
	}
	return b, nil
}

// Transactions returns the child's ledger, newest first.
func (s *Service) Transactions(ctx context.Context, childID, householdID string) ([]model.PointsTransaction, error) {
	if err := s.checkChild(ctx, childID, householdID); err != nil {
		return nil, err
	}
	return s.ledger.ListForChild(ctx, childID)
}

// Leaderboard ranks the household's children by balance.
func (s *Service) Leaderboard(ctx context.Context, householdID string) ([]model.PointBalance, error) {
	return s.ledger.Leaderboard(ctx, householdID)
}

func (s *Service) checkChild(ctx context.Context, childID, householdID string) error {
	c, err := s.children.GetInHousehold(ctx, childID, householdID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("Child not found")
	}
	return nil
}
