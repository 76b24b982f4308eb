package chore

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/model"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

// TemplateInput is a new template.
type TemplateInput struct {
	Title       string
	Description *string
	Points      int
	Recurrence  model.Recurrence
}

// TemplatePatch holds the fields to change; nil fields are kept.
type TemplatePatch struct {
	Title       *string
	Description *string
	Points      *int
	Recurrence  *model.Recurrence
	IsActive    *bool
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.BadRequest("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", apperr.BadRequest("Title must be at most %d characters", maxTitleLen)
	}
	return title, nil
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

func (s *Service) CreateTemplate(ctx context.Context, householdID string, in TemplateInput) (*model.ChoreTemplate, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	desc, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if in.Points < 1 {
		return nil, apperr.BadRequest("Points must be at least 1")
	}
	rec := in.Recurrence
	if rec == "" {
		rec = model.RecurrenceNone
	}
	if !rec.Valid() {
		return nil, apperr.BadRequest("Recurrence must be NONE, DAILY or WEEKLY")
	}

	t, err := s.templates.Create(ctx, householdID, title, desc, in.Points, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("template created", "template_id", t.ID, "household_id", householdID)
	return t, nil
}

// Templates returns the household's active templates, newest first.
func (s *Service) Templates(ctx context.Context, householdID string) ([]model.ChoreTemplate, error) {
	return s.templates.ListActive(ctx, householdID)
}

func (s *Service) Template(ctx context.Context, id, householdID string) (*model.ChoreTemplate, error) {
	t, err := s.templates.GetInHousehold(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Chore template not found")
	}
	return t, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, id, householdID string, p TemplatePatch) (*model.ChoreTemplate, error) {
	t, err := s.Template(ctx, id, householdID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		if t.Title, err = validateTitle(*p.Title); err != nil {
			return nil, err
		}
	}
	if p.Description != nil {
		if t.Description, err = validateDescription(p.Description); err != nil {
			return nil, err
		}
	}
	if p.Points != nil {
		if *p.Points < 1 {
			return nil, apperr.BadRequest("Points must be at least 1")
		}
		t.Points = *p.Points
	}
	if p.Recurrence != nil {
		if !p.Recurrence.Valid() {
			return nil, apperr.BadRequest("Recurrence must be NONE, DAILY or WEEKLY")
		}
		t.Recurrence = *p.Recurrence
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	return s.templates.Update(ctx, t)
}

// DeleteTemplate deactivates the template. Instances already generated
// from it are kept.
func (s *Service) DeleteTemplate(ctx context.Context, id, householdID string) error {
	if _, err := s.Template(ctx, id, householdID); err != nil {
		return err
	}
	if err := s.templates.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deactivated", "template_id", id, "household_id", householdID)
	return nil
}
