package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/household"
	"github.com/dukerupert/chorestore/internal/websocket"
)

type ChildHandler struct {
	households *household.Service
	hub        Broadcaster
	logger     *slog.Logger
}

func NewChildHandler(hs *household.Service, hub Broadcaster, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{households: hs, hub: hub, logger: logger}
}

type createChildRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
	PIN    string  `json:"pin"`
}

type updateChildRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	PIN    *string `json:"pin"`
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.households.Children(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(children))
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	c, err := h.households.AddChild(r.Context(), householdID, req.Name, req.Avatar, req.PIN)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("child", "created", c.ID, nil))
	writeJSON(w, http.StatusCreated, c)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.households.Child(r.Context(), r.PathValue("id"), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateChildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	c, err := h.households.UpdateChild(r.Context(), r.PathValue("id"), householdID, household.ChildPatch{
		Name:   req.Name,
		Avatar: req.Avatar,
		PIN:    req.PIN,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("child", "updated", c.ID, nil))
	writeJSON(w, http.StatusOK, c)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	householdID := auth.HouseholdID(r.Context())
	if err := h.households.RemoveChild(r.Context(), id, householdID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("child", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
