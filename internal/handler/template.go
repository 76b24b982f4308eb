package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/chore"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/websocket"
)

type TemplateHandler struct {
	chores *chore.Service
	hub    Broadcaster
	logger *slog.Logger
}

func NewTemplateHandler(cs *chore.Service, hub Broadcaster, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{chores: cs, hub: hub, logger: logger}
}

type templateRequest struct {
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Points      int              `json:"points"`
	Recurrence  model.Recurrence `json:"recurrence"`
}

type templatePatchRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Points      *int              `json:"points"`
	Recurrence  *model.Recurrence `json:"recurrence"`
	IsActive    *bool             `json:"is_active"`
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.chores.Templates(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(templates))
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Recurrence == "" {
		req.Recurrence = model.RecurrenceNone
	}
	householdID := auth.HouseholdID(r.Context())
	t, err := h.chores.CreateTemplate(r.Context(), householdID, chore.TemplateInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("chore_template", "created", t.ID, nil))
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.chores.Template(r.Context(), r.PathValue("id"), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req templatePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	t, err := h.chores.UpdateTemplate(r.Context(), r.PathValue("id"), householdID, chore.TemplatePatch{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Recurrence:  req.Recurrence,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("chore_template", "updated", t.ID, nil))
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	householdID := auth.HouseholdID(r.Context())
	if err := h.chores.DeleteTemplate(r.Context(), id, householdID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("chore_template", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
