package model

import "time"

// Notification types sent to parents.
const (
	NotifTypeChoreSubmitted  = "chore_submitted"
	NotifTypeRewardRequested = "reward_requested"
)

type PushSubscription struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HouseholdID string    `json:"household_id"`
	Endpoint    string    `json:"endpoint"`
	P256dhKey   string    `json:"p256dh_key"`
	AuthKey     string    `json:"auth_key"`
	DeviceName  string    `json:"device_name"`
	CreatedAt   time.Time `json:"created_at"`
}
