package household

import (
	"context"
	"errors"
	"strings"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/store"
)

// ChildPatch holds the child fields to change; nil fields are kept. An
// empty Avatar clears it.
type ChildPatch struct {
	Name   *string
	Avatar *string
	PIN    *string
}

func validatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return apperr.BadRequest("PIN must be exactly 4 digits")
	}
	return nil
}

func cleanAvatar(avatar *string) *string {
	if avatar == nil {
		return nil
	}
	a := strings.TrimSpace(*avatar)
	if a == "" {
		return nil
	}
	return &a
}

func (s *Service) AddChild(ctx context.Context, householdID, name string, avatar *string, pin string) (*model.Child, error) {
	name, err := validateName(name, "Name")
	if err != nil {
		return nil, err
	}
	if err := validatePIN(pin); err != nil {
		return nil, err
	}
	hash, err := auth.Hash(pin)
	if err != nil {
		return nil, err
	}

	c, err := s.children.Create(ctx, householdID, name, cleanAvatar(avatar), hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("A child with this name already exists")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("child added", "child_id", c.ID, "household_id", householdID)
	return c, nil
}

// Children lists the household's children by name.
func (s *Service) Children(ctx context.Context, householdID string) ([]model.Child, error) {
	return s.children.ListByHousehold(ctx, householdID)
}

func (s *Service) Child(ctx context.Context, id, householdID string) (*model.Child, error) {
	c, err := s.children.GetInHousehold(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Child not found")
	}
	return c, nil
}

func (s *Service) UpdateChild(ctx context.Context, id, householdID string, p ChildPatch) (*model.Child, error) {
	c, err := s.Child(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	name := c.Name
	if p.Name != nil {
		if name, err = validateName(*p.Name, "Name"); err != nil {
			return nil, err
		}
	}
	avatar := c.Avatar
	if p.Avatar != nil {
		avatar = cleanAvatar(p.Avatar)
	}
	var pinHash *string
	if p.PIN != nil {
		if err := validatePIN(*p.PIN); err != nil {
			return nil, err
		}
		h, err := auth.Hash(*p.PIN)
		if err != nil {
			return nil, err
		}
		pinHash = &h
	}

	updated, err := s.children.Update(ctx, id, name, avatar, pinHash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("A child with this name already exists")
	}
	return updated, err
}

// RemoveChild deletes a child who has no points history.
func (s *Service) RemoveChild(ctx context.Context, id, householdID string) error {
	if _, err := s.Child(ctx, id, householdID); err != nil {
		return err
	}
	err := s.children.Delete(ctx, id)
	if errors.Is(err, store.ErrHasHistory) {
		return apperr.Conflict("This child has points history and cannot be deleted")
	}
	if err != nil {
		return err
	}
	s.logger.Info("child removed", "child_id", id, "household_id", householdID)
	return nil
}
