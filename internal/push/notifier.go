package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/chorestore/internal/model"
)

// Subscriptions is the slice of the push store the notifier needs.
type Subscriptions interface {
	ListByHousehold(ctx context.Context, householdID string) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload Payload) error
}

// Notifier fans parent-facing events out to every subscribed device of a
// household. Expired endpoints are pruned as they are discovered.
type Notifier struct {
	subs   Subscriptions
	sender Sender
	logger *slog.Logger
}

func NewNotifier(subs Subscriptions, sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{subs: subs, sender: sender, logger: logger.With("component", "push")}
}

// ChoreSubmitted tells parents a child is waiting for verification.
func (n *Notifier) ChoreSubmitted(ctx context.Context, householdID, childName, choreTitle string) int {
	return n.notify(ctx, householdID, Payload{
		Title: "Chore submitted",
		Body:  fmt.Sprintf("%s finished %q", childName, choreTitle),
		URL:   "/verifications",
		Tag:   model.NotifTypeChoreSubmitted,
	})
}

// RewardRequested tells parents a child spent points on a reward.
func (n *Notifier) RewardRequested(ctx context.Context, householdID, childName, rewardName string) int {
	return n.notify(ctx, householdID, Payload{
		Title: "Reward requested",
		Body:  fmt.Sprintf("%s redeemed %q", childName, rewardName),
		URL:   "/redemptions",
		Tag:   model.NotifTypeRewardRequested,
	})
}

// notify returns the number of devices that accepted the payload.
func (n *Notifier) notify(ctx context.Context, householdID string, payload Payload) int {
	if n == nil {
		return 0
	}
	subs, err := n.subs.ListByHousehold(ctx, householdID)
	if err != nil {
		n.logger.Error("list push subscriptions", "household_id", householdID, "error", err)
		return 0
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		err := n.sender.Send(ctx, sub, payload)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrExpired):
			if err := n.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				n.logger.Error("delete expired subscription", "endpoint", sub.Endpoint, "error", err)
			} else {
				n.logger.Info("removed expired subscription", "user_id", sub.UserID)
			}
		default:
			n.logger.Warn("push send failed", "user_id", sub.UserID, "tag", payload.Tag, "error", err)
		}
	}
	return sent
}
