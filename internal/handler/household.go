package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/household"
	"github.com/dukerupert/chorestore/internal/websocket"
)

type HouseholdHandler struct {
	households *household.Service
	hub        Broadcaster
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *household.Service, hub Broadcaster, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, hub: hub, logger: logger}
}

type createHouseholdRequest struct {
	Name string `json:"name"`
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	hh, err := h.households.Create(r.Context(), auth.UserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, hh)
}

type joinHouseholdRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	userID := auth.UserID(r.Context())
	hh, err := h.households.Join(r.Context(), userID, req.InviteCode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, hh.ID, websocket.NewMessage("household_member", "created", userID, nil))
	writeJSON(w, http.StatusOK, hh)
}

func (h *HouseholdHandler) Current(w http.ResponseWriter, r *http.Request) {
	detail, err := h.households.Detail(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (h *HouseholdHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ctx := r.Context()
	if err := h.households.Invite(ctx, auth.HouseholdID(ctx), auth.UserID(ctx), req.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
