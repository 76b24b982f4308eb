// Package chore implements chore templates, daily instance generation and
// the submit/verify lifecycle of an instance.
package chore

import "github.com/dukerupert/chorestore/internal/model"

// transitions lists the allowed status moves. APPROVED and DENIED are
// terminal.
var transitions = map[model.ChoreStatus][]model.ChoreStatus{
	model.ChoreTodo:      {model.ChoreSubmitted},
	model.ChoreSubmitted: {model.ChoreApproved, model.ChoreDenied},
}

// CanTransition reports whether an instance may move from one status to
// another.
func CanTransition(from, to model.ChoreStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseDecision validates a parent's verification decision.
func ParseDecision(s string) (model.ChoreStatus, bool) {
	switch model.ChoreStatus(s) {
	case model.ChoreApproved, model.ChoreDenied:
		return model.ChoreStatus(s), true
	}
	return "", false
}
