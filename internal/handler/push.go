package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/model"
)

// SubscriptionStore persists browser push subscriptions.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, userID, householdID, endpoint, p256dh, authKey, deviceName string) (*model.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
}

type PushHandler struct {
	subs      SubscriptionStore
	publicKey string
	logger    *slog.Logger
}

func NewPushHandler(subs SubscriptionStore, vapidPublicKey string, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, publicKey: vapidPublicKey, logger: logger}
}

func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.publicKey == "" {
		writeError(w, h.logger, apperr.NotFound("Push notifications are not enabled"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.publicKey})
}

// subscribeRequest mirrors the browser's PushSubscription.toJSON().
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	DeviceName string `json:"device_name"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !strings.HasPrefix(req.Endpoint, "https://") || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, h.logger, apperr.BadRequest("Endpoint and keys are required"))
		return
	}

	ctx := r.Context()
	sub, err := h.subs.Subscribe(ctx, auth.UserID(ctx), auth.HouseholdID(ctx), req.Endpoint, req.Keys.P256dh, req.Keys.Auth, strings.TrimSpace(req.DeviceName))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Endpoint == "" {
		writeError(w, h.logger, apperr.BadRequest("Endpoint is required"))
		return
	}
	if err := h.subs.Unsubscribe(r.Context(), auth.UserID(r.Context()), req.Endpoint); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
