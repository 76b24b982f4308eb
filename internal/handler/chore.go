package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/chore"
	"github.com/dukerupert/chorestore/internal/websocket"
)

// Notifier alerts parents about events that need their attention.
type Notifier interface {
	ChoreSubmitted(ctx context.Context, householdID, childName, choreTitle string) int
	RewardRequested(ctx context.Context, householdID, childName, rewardName string) int
}

type ChoreHandler struct {
	chores   *chore.Service
	hub      Broadcaster
	notifier Notifier
	logger   *slog.Logger
}

func NewChoreHandler(cs *chore.Service, hub Broadcaster, notifier Notifier, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, hub: hub, notifier: notifier, logger: logger}
}

type generateRequest struct {
	ChildID *string `json:"child_id"`
}

// Generate ensures today's recurring instances exist. Children always
// generate for themselves.
func (h *ChoreHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ctx := r.Context()
	if auth.IsChild(ctx) {
		id := auth.ChildID(ctx)
		req.ChildID = &id
	}
	householdID := auth.HouseholdID(ctx)
	n, err := h.chores.Generate(ctx, householdID, req.ChildID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if n > 0 {
		broadcast(h.hub, householdID, websocket.NewMessage("chore_instance", "generated", "", map[string]any{"created": n}))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    h.chores.Calendar().Today(),
		"created": n,
	})
}

func (h *ChoreHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	instances, err := h.chores.InstancesForChild(ctx, auth.ChildID(ctx), auth.HouseholdID(ctx), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(instances))
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	instances, err := h.chores.InstancesForHousehold(ctx, auth.HouseholdID(ctx), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(instances))
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ci, err := h.chores.Instance(ctx, r.PathValue("id"), auth.HouseholdID(ctx))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if auth.IsChild(ctx) && (ci.AssignedChildID == nil || *ci.AssignedChildID != auth.ChildID(ctx)) {
		writeError(w, h.logger, apperr.NotFound("Chore instance not found"))
		return
	}
	writeJSON(w, http.StatusOK, ci)
}

type createInstanceRequest struct {
	TemplateID string `json:"template_id"`
	ChildID    string `json:"child_id"`
	DueDate    string `json:"due_date"`
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInstanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	ci, err := h.chores.CreateOneTime(r.Context(), householdID, req.TemplateID, req.ChildID, req.DueDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("chore_instance", "created", ci.ID, nil))
	writeJSON(w, http.StatusCreated, ci)
}

type submitRequest struct {
	Note     *string `json:"note"`
	PhotoURL *string `json:"photo_url"`
}

func (h *ChoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ctx := r.Context()
	householdID := auth.HouseholdID(ctx)
	ci, err := h.chores.Submit(ctx, r.PathValue("choreInstanceId"), householdID, auth.ChildID(ctx), req.Note, req.PhotoURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	broadcast(h.hub, householdID, websocket.NewMessage("chore_instance", "submitted", ci.ID, nil))
	if h.notifier != nil && ci.Template != nil && ci.AssignedChild != nil {
		go h.notifier.ChoreSubmitted(context.WithoutCancel(ctx), householdID, ci.AssignedChild.Name, ci.Template.Title)
	}
	writeJSON(w, http.StatusCreated, ci)
}

func (h *ChoreHandler) Pending(w http.ResponseWriter, r *http.Request) {
	instances, err := h.chores.PendingVerifications(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(instances))
}

type verifyRequest struct {
	Status  string  `json:"status"`
	Message *string `json:"message"`
}

func (h *ChoreHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ctx := r.Context()
	householdID := auth.HouseholdID(ctx)
	id := r.PathValue("choreInstanceId")
	v, err := h.chores.Verify(ctx, id, auth.UserID(ctx), householdID, req.Status, req.Message)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("chore_instance", "verified", id, map[string]any{"status": v.Status}))
	writeJSON(w, http.StatusCreated, v)
}
