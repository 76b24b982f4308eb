// Package household owns tenancy: parent accounts, households and their
// membership, and the children who belong to them.
package household

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/store"
)

const (
	maxNameLen        = 100
	minPasswordLen    = 8
	inviteCodeLen     = 8
	inviteCodeRetries = 5
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Inviter delivers invite codes by email.
type Inviter interface {
	Configured() bool
	SendInvite(ctx context.Context, toEmail, inviterName, householdName, inviteCode string) error
}

type Service struct {
	users      *store.UserStore
	households *store.HouseholdStore
	children   *store.ChildStore
	tokens     *auth.Tokens
	inviter    Inviter
	logger     *slog.Logger
}

func NewService(
	users *store.UserStore,
	households *store.HouseholdStore,
	children *store.ChildStore,
	tokens *auth.Tokens,
	inviter Inviter,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:      users,
		households: households,
		children:   children,
		tokens:     tokens,
		inviter:    inviter,
		logger:     logger.With("component", "household"),
	}
}

// newInviteCode returns 8 upper-case hex characters.
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:inviteCodeLen])
}

func validateName(name, field string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequest("%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", apperr.BadRequest("%s must be at most %d characters", field, maxNameLen)
	}
	return name, nil
}

// Create makes a new household with userID as its ADMIN.
func (s *Service) Create(ctx context.Context, userID, name string) (*model.Household, error) {
	name, err := validateName(name, "Name")
	if err != nil {
		return nil, err
	}

	for i := 0; i < inviteCodeRetries; i++ {
		h, err := s.households.CreateWithAdmin(ctx, name, newInviteCode(), userID)
		switch {
		case errors.Is(err, store.ErrAlreadyMember):
			return nil, apperr.Conflict("You already belong to a household")
		case errors.Is(err, store.ErrDuplicate):
			continue
		case err != nil:
			return nil, err
		}
		s.logger.Info("household created", "household_id", h.ID, "user_id", userID)
		return h, nil
	}
	return nil, errors.New("could not allocate a unique invite code")
}

// Join adds userID to the household with the given invite code as a PARENT.
func (s *Service) Join(ctx context.Context, userID, inviteCode string) (*model.Household, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, apperr.BadRequest("Invite code is required")
	}
	h, err := s.households.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("Invalid invite code")
	}

	if _, err := s.households.AddMember(ctx, h.ID, userID, model.RoleParent); err != nil {
		if errors.Is(err, store.ErrAlreadyMember) {
			return nil, apperr.Conflict("You already belong to a household")
		}
		return nil, err
	}
	s.logger.Info("household joined", "household_id", h.ID, "user_id", userID)
	return h, nil
}

// Detail returns the household with its members and children.
func (s *Service) Detail(ctx context.Context, householdID string) (*model.HouseholdDetail, error) {
	h, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("Household not found")
	}
	members, err := s.households.ListMembers(ctx, householdID)
	if err != nil {
		return nil, err
	}
	children, err := s.children.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return &model.HouseholdDetail{Household: *h, Members: members, Children: children}, nil
}

// Membership resolves a parent's household, or Forbidden when they have none.
func (s *Service) Membership(ctx context.Context, userID string) (*model.Membership, error) {
	m, err := s.households.MembershipForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.Forbidden("You must belong to a household")
	}
	return m, nil
}

// ParentIDs lists the user IDs of the household's parents.
func (s *Service) ParentIDs(ctx context.Context, householdID string) ([]string, error) {
	return s.households.ParentIDs(ctx, householdID)
}

// Invite emails the household's invite code.
func (s *Service) Invite(ctx context.Context, householdID, inviterID, toEmail string) error {
	toEmail = strings.ToLower(strings.TrimSpace(toEmail))
	if !strings.Contains(toEmail, "@") {
		return apperr.BadRequest("A valid email is required")
	}
	if s.inviter == nil || !s.inviter.Configured() {
		return apperr.BadRequest("Email delivery is not configured")
	}
	h, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		return err
	}
	if h == nil {
		return apperr.NotFound("Household not found")
	}
	inviter, err := s.users.GetByID(ctx, inviterID)
	if err != nil {
		return err
	}
	name := "A parent"
	if inviter != nil {
		name = inviter.Name
	}
	if err := s.inviter.SendInvite(ctx, toEmail, name, h.Name, h.InviteCode); err != nil {
		return err
	}
	s.logger.Info("invite sent", "household_id", householdID, "inviter_id", inviterID)
	return nil
}
