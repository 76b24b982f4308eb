package model

import "time"

// Member roles.
const (
	RoleAdmin  = "ADMIN"
	RoleParent = "PARENT"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Household struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type HouseholdMember struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	User        *User     `json:"user,omitempty"`
}

// HouseholdDetail is the parent-facing view of a household.
type HouseholdDetail struct {
	Household
	Members  []HouseholdMember `json:"members"`
	Children []Child           `json:"children"`
}

// Membership is a parent's household as reported by /api/auth/me.
type Membership struct {
	HouseholdID string `json:"household_id"`
	Name        string `json:"name"`
	InviteCode  string `json:"invite_code"`
	Role        string `json:"role"`
}

type Child struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	Name        string    `json:"name"`
	Avatar      *string   `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
}
