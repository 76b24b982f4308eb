package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/chorestore/internal/model"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ctx := context.Background()

	u, err := us.Create(ctx, "a@example.com", "Alex", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated ID")
	}

	_, err = us.Create(ctx, "a@example.com", "Other", "hash")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}

	got, hash, err := us.GetCredentials(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("get credentials: %v", err)
	}
	if got.Name != "Alex" || hash != "hash" {
		t.Errorf("got %q/%q, want Alex/hash", got.Name, hash)
	}

	missing, _, err := us.GetCredentials(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("get credentials: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestHouseholdCreateWithAdmin(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	hs := NewHouseholdStore(db)
	ctx := context.Background()

	m, err := hs.MembershipForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("membership: %v", err)
	}
	if m == nil || m.HouseholdID != f.household.ID {
		t.Fatalf("membership = %+v, want household %s", m, f.household.ID)
	}
	if m.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", m.Role, model.RoleAdmin)
	}

	_, err = hs.CreateWithAdmin(ctx, "Second", "FFFF0000", f.user.ID)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestHouseholdInviteCodeCollision(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ctx := context.Background()

	other, err := NewUserStore(db).Create(ctx, "other@example.com", "Other", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err = NewHouseholdStore(db).CreateWithAdmin(ctx, "Dupe", f.household.InviteCode, other.ID)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestHouseholdJoin(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	hs := NewHouseholdStore(db)
	ctx := context.Background()

	h, err := hs.GetByInviteCode(ctx, "ABCD1234")
	if err != nil {
		t.Fatalf("get by invite code: %v", err)
	}
	if h == nil || h.ID != f.household.ID {
		t.Fatalf("household = %+v", h)
	}

	joiner, err := NewUserStore(db).Create(ctx, "co@example.com", "Casey", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := hs.AddMember(ctx, h.ID, joiner.ID, model.RoleParent); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := hs.AddMember(ctx, h.ID, joiner.ID, model.RoleParent); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second join err = %v, want ErrAlreadyMember", err)
	}

	members, err := hs.ListMembers(ctx, h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	if members[1].User == nil || members[1].User.Email != "co@example.com" {
		t.Errorf("second member user = %+v", members[1].User)
	}
}

func TestChildCRUD(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	cs := NewChildStore(db)
	ctx := context.Background()

	if _, err := cs.Create(ctx, f.household.ID, "Sam", nil, "x"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate name err = %v, want ErrDuplicate", err)
	}

	avatar := "🦊"
	ava, err := cs.Create(ctx, f.household.ID, "Ava", &avatar, "pin")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if ava.Avatar == nil || *ava.Avatar != avatar {
		t.Errorf("avatar = %v, want %q", ava.Avatar, avatar)
	}

	list, err := cs.ListByHousehold(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Ava" {
		t.Errorf("list = %+v, want Ava first", list)
	}

	newPin := "newpin"
	updated, err := cs.Update(ctx, ava.ID, "Ava B", nil, &newPin)
	if err != nil {
		t.Fatalf("update child: %v", err)
	}
	if updated.Name != "Ava B" || updated.Avatar != nil {
		t.Errorf("updated = %+v", updated)
	}
	_, hash, err := cs.GetCredentials(ctx, f.household.ID, "Ava B")
	if err != nil {
		t.Fatalf("get credentials: %v", err)
	}
	if hash != "newpin" {
		t.Errorf("pin hash = %q, want newpin", hash)
	}

	if err := cs.Delete(ctx, ava.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	got, err := cs.GetByID(ctx, ava.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got != nil {
		t.Error("expected child to be deleted")
	}
}

func TestChildDeleteWithHistory(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 5)

	err := NewChildStore(db).Delete(context.Background(), f.child.ID)
	if !errors.Is(err, ErrHasHistory) {
		t.Errorf("err = %v, want ErrHasHistory", err)
	}
}

func TestChildGetInHousehold(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	cs := NewChildStore(db)
	ctx := context.Background()

	got, err := cs.GetInHousehold(ctx, f.child.ID, "other-household")
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got != nil {
		t.Error("expected nil for child of another household")
	}
}
