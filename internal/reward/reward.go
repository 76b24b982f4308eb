// Package reward manages a household's reward catalog and the redemption
// of points for rewards.
package reward

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/store"
)

const (
	maxNameLen        = 200
	maxDescriptionLen = 1000
)

type Service struct {
	rewards     *store.RewardStore
	redemptions *store.RedemptionStore
	children    *store.ChildStore
	logger      *slog.Logger
}

func NewService(rewards *store.RewardStore, redemptions *store.RedemptionStore, children *store.ChildStore, logger *slog.Logger) *Service {
	return &Service{
		rewards:     rewards,
		redemptions: redemptions,
		children:    children,
		logger:      logger.With("component", "reward"),
	}
}

// Input is a new reward.
type Input struct {
	Name        string
	Description *string
	PointCost   int
}

// Patch holds the reward fields to change; nil fields are kept.
type Patch struct {
	Name        *string
	Description *string
	PointCost   *int
	IsActive    *bool
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequest("Name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", apperr.BadRequest("Name must be at most %d characters", maxNameLen)
	}
	return name, nil
}

func validateDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(d) > maxDescriptionLen {
		return nil, apperr.BadRequest("Description must be at most %d characters", maxDescriptionLen)
	}
	return &d, nil
}

func (s *Service) Create(ctx context.Context, householdID string, in Input) (*model.Reward, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	desc, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if in.PointCost < 1 {
		return nil, apperr.BadRequest("Point cost must be at least 1")
	}
	r, err := s.rewards.Create(ctx, householdID, name, desc, in.PointCost)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reward created", "reward_id", r.ID, "household_id", householdID)
	return r, nil
}

// List returns the household's active rewards, newest first.
func (s *Service) List(ctx context.Context, householdID string) ([]model.Reward, error) {
	return s.rewards.List(ctx, householdID)
}

// Shop returns the rewards a child can pick from, cheapest first.
func (s *Service) Shop(ctx context.Context, householdID string) ([]model.Reward, error) {
	return s.rewards.ListShop(ctx, householdID)
}

func (s *Service) Get(ctx context.Context, id, householdID string) (*model.Reward, error) {
	r, err := s.rewards.GetInHousehold(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("Reward not found")
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id, householdID string, p Patch) (*model.Reward, error) {
	r, err := s.Get(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		if r.Name, err = validateName(*p.Name); err != nil {
			return nil, err
		}
	}
	if p.Description != nil {
		if r.Description, err = validateDescription(p.Description); err != nil {
			return nil, err
		}
	}
	if p.PointCost != nil {
		if *p.PointCost < 1 {
			return nil, apperr.BadRequest("Point cost must be at least 1")
		}
		r.PointCost = *p.PointCost
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	return s.rewards.Update(ctx, r)
}

// Delete deactivates the reward. Past redemptions keep their reference.
func (s *Service) Delete(ctx context.Context, id, householdID string) error {
	if _, err := s.Get(ctx, id, householdID); err != nil {
		return err
	}
	return s.rewards.Deactivate(ctx, id)
}

// Redeem spends the reward's cost from the child's balance and records a
// REQUESTED redemption. Nothing is written when the balance is too low.
func (s *Service) Redeem(ctx context.Context, childID, householdID, rewardID string) (*model.Redemption, error) {
	r, err := s.rewards.GetInHousehold(ctx, rewardID, householdID)
	if err != nil {
		return nil, err
	}
	if r == nil || !r.IsActive {
		return nil, apperr.NotFound("Reward not found")
	}
	c, err := s.children.GetInHousehold(ctx, childID, householdID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Child not found")
	}

	rd, err := s.redemptions.Create(ctx, childID, r)
	if errors.Is(err, store.ErrInsufficientPoints) {
		return nil, apperr.BadRequest("Insufficient points")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("reward redeemed", "redemption_id", rd.ID, "child_id", childID, "reward_id", rewardID, "cost", r.PointCost)
	return rd, nil
}

// next lists the forward status moves a redemption may make.
var next = map[model.RedemptionStatus]model.RedemptionStatus{
	model.RedemptionRequested: model.RedemptionApproved,
	model.RedemptionApproved:  model.RedemptionDelivered,
}

// UpdateStatus advances a redemption. Setting the current status again is a
// no-op; any other move than one step forward is rejected.
func (s *Service) UpdateStatus(ctx context.Context, id, householdID, status string) (*model.Redemption, error) {
	to := model.RedemptionStatus(status)
	if to != model.RedemptionApproved && to != model.RedemptionDelivered {
		return nil, apperr.BadRequest("Status must be APPROVED or DELIVERED")
	}

	rd, err := s.redemptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rd == nil || rd.Child.HouseholdID != householdID {
		return nil, apperr.NotFound("Redemption not found")
	}
	if rd.Status == to {
		return rd, nil
	}
	if next[rd.Status] != to {
		return nil, apperr.BadRequest("Invalid status transition")
	}

	updated, err := s.redemptions.UpdateStatus(ctx, id, rd.Status, to)
	if errors.Is(err, store.ErrStale) {
		return nil, apperr.Conflict("Redemption was updated by someone else")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("redemption status changed", "redemption_id", id, "from", rd.Status, "to", to)
	return updated, nil
}

// RedemptionsForChild returns the child's redemptions, newest first.
func (s *Service) RedemptionsForChild(ctx context.Context, childID string) ([]model.Redemption, error) {
	return s.redemptions.ListForChild(ctx, childID)
}

// RedemptionsForHousehold returns every redemption in the household,
// newest first.
func (s *Service) RedemptionsForHousehold(ctx context.Context, householdID string) ([]model.Redemption, error) {
	return s.redemptions.ListForHousehold(ctx, householdID)
}
