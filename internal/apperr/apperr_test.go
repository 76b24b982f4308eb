package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("Reward not found"), KindNotFound},
		{"forbidden", Forbidden("nope"), KindForbidden},
		{"bad request", BadRequest("Insufficient points"), KindBadRequest},
		{"conflict", Conflict("already"), KindConflict},
		{"unauthorized", Unauthorized("Invalid PIN"), KindUnauthorized},
		{"wrapped", fmt.Errorf("redeem: %w", Conflict("dup")), KindConflict},
		{"plain", errors.New("disk full"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("%s not found", "Chore instance")
	if err.Error() != "Chore instance not found" {
		t.Errorf("message = %q", err.Error())
	}
	if Is(nil, KindInternal) {
		t.Error("nil error should not match any kind")
	}
}
