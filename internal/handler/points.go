package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/points"
)

type PointsHandler struct {
	points *points.Service
	logger *slog.Logger
}

func NewPointsHandler(ps *points.Service, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{points: ps, logger: logger}
}

// targetChild is the caller for children and ?childId= for parents.
func targetChild(r *http.Request) (string, error) {
	if auth.IsChild(r.Context()) {
		return auth.ChildID(r.Context()), nil
	}
	id := r.URL.Query().Get("childId")
	if id == "" {
		return "", apperr.BadRequest("childId is required")
	}
	return id, nil
}

func (h *PointsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	childID, err := targetChild(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	summary, err := h.points.Summary(r.Context(), childID, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *PointsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	childID, err := targetChild(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	txs, err := h.points.Transactions(r.Context(), childID, auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(txs))
}

func (h *PointsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.points.Leaderboard(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(board))
}
