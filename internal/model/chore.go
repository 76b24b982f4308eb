package model

import "time"

type Recurrence string

const (
	RecurrenceNone   Recurrence = "NONE"
	RecurrenceDaily  Recurrence = "DAILY"
	RecurrenceWeekly Recurrence = "WEEKLY"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}

type ChoreStatus string

const (
	ChoreTodo      ChoreStatus = "TODO"
	ChoreSubmitted ChoreStatus = "SUBMITTED"
	ChoreApproved  ChoreStatus = "APPROVED"
	ChoreDenied    ChoreStatus = "DENIED"
)

type ChoreTemplate struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"household_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Points      int        `json:"points"`
	Recurrence  Recurrence `json:"recurrence"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ChoreInstance is one day's occurrence of a template. The nested pointers
// are populated by the store's joined reads.
type ChoreInstance struct {
	ID              string         `json:"id"`
	TemplateID      string         `json:"template_id"`
	AssignedChildID *string        `json:"assigned_child_id"`
	DueDate         string         `json:"due_date"`
	Status          ChoreStatus    `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	Template        *ChoreTemplate `json:"template,omitempty"`
	AssignedChild   *Child         `json:"assigned_child,omitempty"`
	Submission      *Submission    `json:"submission"`
	Verification    *Verification  `json:"verification"`
}

type Submission struct {
	ID              string    `json:"id"`
	ChoreInstanceID string    `json:"chore_instance_id"`
	Note            *string   `json:"note"`
	PhotoURL        *string   `json:"photo_url"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type Verification struct {
	ID              string      `json:"id"`
	ChoreInstanceID string      `json:"chore_instance_id"`
	ParentID        string      `json:"parent_id"`
	Status          ChoreStatus `json:"status"`
	Message         *string     `json:"message"`
	CreatedAt       time.Time   `json:"created_at"`
}
