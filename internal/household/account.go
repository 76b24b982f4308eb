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

// Session is a freshly issued token and the principal it belongs to.
type Session struct {
	Token string       `json:"token"`
	User  *model.User  `json:"user,omitempty"`
	Child *model.Child `json:"child,omitempty"`
}

// Profile is what a parent sees about themselves.
type Profile struct {
	User      *model.User       `json:"user"`
	Household *model.Membership `json:"household"`
}

// Register creates a parent account and signs them in.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, apperr.BadRequest("A valid email is required")
	}
	if len(password) < minPasswordLen {
		return nil, apperr.BadRequest("Password must be at least %d characters", minPasswordLen)
	}
	name, err := validateName(name, "Name")
	if err != nil {
		return nil, err
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, email, name, hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Email already registered")
	}
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueParent(u.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("parent registered", "user_id", u.ID)
	return &Session{Token: token, User: u}, nil
}

// Login checks a parent's credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, hash, err := s.users.GetCredentials(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	ok, err := auth.Check(hash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.IssueParent(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

// ChildLogin signs a child in with their household's invite code, their
// name and their PIN.
func (s *Service) ChildLogin(ctx context.Context, householdCode, childName, pin string) (*Session, error) {
	code := strings.ToUpper(strings.TrimSpace(householdCode))
	h, err := s.households.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("Household not found")
	}
	c, hash, err := s.children.GetCredentials(ctx, h.ID, strings.TrimSpace(childName))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Child not found")
	}
	ok, err := auth.Check(hash, pin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthorized("Invalid PIN")
	}

	token, err := s.tokens.IssueChild(c.ID, h.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Child: c}, nil
}

// Me returns a parent's profile and household membership, which is nil
// when they have not joined one yet.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	m, err := s.households.MembershipForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Household: m}, nil
}

// User returns a parent account, or nil.
func (s *Service) User(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ChildByID returns a child regardless of household, or nil.
func (s *Service) ChildByID(ctx context.Context, childID string) (*model.Child, error) {
	return s.children.GetByID(ctx, childID)
}
