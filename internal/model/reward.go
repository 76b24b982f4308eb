package model

import "time"

type PointsType string

const (
	PointsEarned PointsType = "EARNED"
	PointsSpent  PointsType = "SPENT"
)

type RedemptionStatus string

const (
	RedemptionRequested RedemptionStatus = "REQUESTED"
	RedemptionApproved  RedemptionStatus = "APPROVED"
	RedemptionDelivered RedemptionStatus = "DELIVERED"
)

// PointsTransaction is an immutable ledger entry. Amount is positive for
// EARNED and negative for SPENT.
type PointsTransaction struct {
	ID              string     `json:"id"`
	ChildID         string     `json:"child_id"`
	Amount          int        `json:"amount"`
	Type            PointsType `json:"type"`
	Reason          string     `json:"reason"`
	ChoreInstanceID *string    `json:"chore_instance_id"`
	RedemptionID    *string    `json:"redemption_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

type PointBalance struct {
	ChildID     string `json:"child_id"`
	ChildName   string `json:"child_name"`
	TotalEarned int    `json:"total_earned"`
	TotalSpent  int    `json:"total_spent"`
	Balance     int    `json:"balance"`
}

type Reward struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	PointCost   int       `json:"point_cost"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Redemption struct {
	ID        string           `json:"id"`
	ChildID   string           `json:"child_id"`
	RewardID  string           `json:"reward_id"`
	Status    RedemptionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Reward    *Reward          `json:"reward,omitempty"`
	Child     *Child           `json:"child,omitempty"`
}
