package chore

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/store"
)

const maxNoteLen = 500

type Service struct {
	templates  *store.TemplateStore
	instances  *store.InstanceStore
	children   *store.ChildStore
	households *store.HouseholdStore
	calendar   *Calendar
	logger     *slog.Logger
}

func NewService(
	templates *store.TemplateStore,
	instances *store.InstanceStore,
	children *store.ChildStore,
	households *store.HouseholdStore,
	calendar *Calendar,
	logger *slog.Logger,
) *Service {
	return &Service{
		templates:  templates,
		instances:  instances,
		children:   children,
		households: households,
		calendar:   calendar,
		logger:     logger.With("component", "chore"),
	}
}

func (s *Service) Calendar() *Calendar {
	return s.calendar
}

// Generate makes sure today's instances exist for every active recurring
// template and every child of the household, or only childID when given.
// It never modifies an existing instance.
func (s *Service) Generate(ctx context.Context, householdID string, childID *string) (int, error) {
	if childID != nil {
		c, err := s.children.GetInHousehold(ctx, *childID, householdID)
		if err != nil {
			return 0, err
		}
		if c == nil {
			return 0, apperr.NotFound("Child not found")
		}
	}
	today := s.calendar.Today()
	n, err := s.instances.Generate(ctx, householdID, childID, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("instances generated", "household_id", householdID, "date", today, "created", n)
	}
	return n, nil
}

// GenerateAll runs Generate for every household.
func (s *Service) GenerateAll(ctx context.Context) (int, error) {
	ids, err := s.households.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range ids {
		n, err := s.Generate(ctx, id, nil)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// InstancesForChild returns the child's instances due on date, generating
// them first when date is today.
func (s *Service) InstancesForChild(ctx context.Context, childID, householdID, date string) ([]model.ChoreInstance, error) {
	day, err := s.date(date)
	if err != nil {
		return nil, err
	}
	if day == s.calendar.Today() {
		if _, err := s.Generate(ctx, householdID, &childID); err != nil {
			return nil, err
		}
	}
	return s.instances.ListForChild(ctx, childID, day)
}

func (s *Service) InstancesForHousehold(ctx context.Context, householdID, date string) ([]model.ChoreInstance, error) {
	day, err := s.date(date)
	if err != nil {
		return nil, err
	}
	return s.instances.ListForHousehold(ctx, householdID, day)
}

// Instance returns the instance aggregate if it belongs to householdID.
func (s *Service) Instance(ctx context.Context, id, householdID string) (*model.ChoreInstance, error) {
	ci, err := s.instances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ci == nil || ci.Template.HouseholdID != householdID {
		return nil, apperr.NotFound("Chore instance not found")
	}
	return ci, nil
}

// CreateOneTime assigns a template to a child for a single date, which
// defaults to today.
func (s *Service) CreateOneTime(ctx context.Context, householdID, templateID, childID, dueDate string) (*model.ChoreInstance, error) {
	t, err := s.templates.GetInHousehold(ctx, templateID, householdID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Chore template not found")
	}
	c, err := s.children.GetInHousehold(ctx, childID, householdID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Child not found")
	}
	day, err := s.date(dueDate)
	if err != nil {
		return nil, err
	}

	ci, err := s.instances.Create(ctx, templateID, childID, day)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("This chore is already assigned for that date")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("instance created", "instance_id", ci.ID, "template_id", templateID, "child_id", childID, "due_date", day)
	return ci, nil
}

// Submit marks a TODO instance assigned to childID as done. Instances outside
// the child's household are reported as not found.
func (s *Service) Submit(ctx context.Context, instanceID, householdID, childID string, note, photoURL *string) (*model.ChoreInstance, error) {
	note, err := cleanText(note, "Note")
	if err != nil {
		return nil, err
	}
	photoURL, err = cleanPhotoURL(photoURL)
	if err != nil {
		return nil, err
	}

	ci, err := s.Instance(ctx, instanceID, householdID)
	if err != nil {
		return nil, err
	}
	if ci.AssignedChildID == nil || *ci.AssignedChildID != childID {
		return nil, apperr.Forbidden("This chore is not assigned to you")
	}
	if ci.Status != model.ChoreTodo {
		return nil, apperr.BadRequest("This chore has already been submitted")
	}

	if _, err := s.instances.Submit(ctx, instanceID, note, photoURL); err != nil {
		if errors.Is(err, store.ErrStale) {
			return nil, apperr.BadRequest("This chore has already been submitted")
		}
		return nil, err
	}
	s.logger.Info("chore submitted", "instance_id", instanceID, "child_id", childID)
	return s.instances.GetByID(ctx, instanceID)
}

// Verify records a parent's decision on a submitted instance. Approval
// credits the template's points to the child in the same transaction.
func (s *Service) Verify(ctx context.Context, instanceID, parentID, householdID, status string, message *string) (*model.Verification, error) {
	ci, err := s.Instance(ctx, instanceID, householdID)
	if err != nil {
		return nil, err
	}
	decision, ok := ParseDecision(status)
	if !ok {
		return nil, apperr.BadRequest("Status must be APPROVED or DENIED")
	}
	if ci.Verification != nil {
		return nil, apperr.Conflict("This chore has already been verified")
	}
	if !CanTransition(ci.Status, decision) {
		return nil, apperr.BadRequest("This chore is not awaiting verification")
	}
	message, err = cleanText(message, "Message")
	if err != nil {
		return nil, err
	}

	v, err := s.instances.Verify(ctx, instanceID, parentID, decision, message)
	switch {
	case errors.Is(err, store.ErrAlreadyVerified):
		return nil, apperr.Conflict("This chore has already been verified")
	case errors.Is(err, store.ErrStale):
		return nil, apperr.BadRequest("This chore is not awaiting verification")
	case err != nil:
		return nil, err
	}
	s.logger.Info("chore verified", "instance_id", instanceID, "status", decision, "parent_id", parentID)
	return v, nil
}

// PendingVerifications lists the household's submitted instances, oldest
// submission first.
func (s *Service) PendingVerifications(ctx context.Context, householdID string) ([]model.ChoreInstance, error) {
	return s.instances.ListPending(ctx, householdID)
}

func (s *Service) date(raw string) (string, error) {
	day, err := s.calendar.Normalize(raw)
	if err != nil {
		return "", apperr.BadRequest("Invalid date")
	}
	return day, nil
}

func cleanText(v *string, field string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	n := strings.TrimSpace(*v)
	if n == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(n) > maxNoteLen {
		return nil, apperr.BadRequest("%s must be at most %d characters", field, maxNoteLen)
	}
	return &n, nil
}

func cleanPhotoURL(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	u, err := url.Parse(strings.TrimSpace(*raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.BadRequest("Photo URL must be a valid URL")
	}
	s := u.String()
	return &s, nil
}
