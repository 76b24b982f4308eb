package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/reward"
	"github.com/dukerupert/chorestore/internal/websocket"
)

type RewardHandler struct {
	rewards  *reward.Service
	hub      Broadcaster
	notifier Notifier
	logger   *slog.Logger
}

func NewRewardHandler(rs *reward.Service, hub Broadcaster, notifier Notifier, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rs, hub: hub, notifier: notifier, logger: logger}
}

type rewardRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PointCost   int     `json:"point_cost"`
}

type rewardPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PointCost   *int    `json:"point_cost"`
	IsActive    *bool   `json:"is_active"`
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.List(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rewards))
}

func (h *RewardHandler) Shop(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.Shop(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rewards))
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	rw, err := h.rewards.Create(r.Context(), householdID, reward.Input{
		Name:        req.Name,
		Description: req.Description,
		PointCost:   req.PointCost,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("reward", "created", rw.ID, nil))
	writeJSON(w, http.StatusCreated, rw)
}

func (h *RewardHandler) Get(w http.ResponseWriter, r *http.Request) {
	rw, err := h.rewards.Get(r.Context(), r.PathValue("id"), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rw)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req rewardPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	rw, err := h.rewards.Update(r.Context(), r.PathValue("id"), householdID, reward.Patch{
		Name:        req.Name,
		Description: req.Description,
		PointCost:   req.PointCost,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("reward", "updated", rw.ID, nil))
	writeJSON(w, http.StatusOK, rw)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	householdID := auth.HouseholdID(r.Context())
	if err := h.rewards.Delete(r.Context(), id, householdID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("reward", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type redeemRequest struct {
	RewardID string `json:"reward_id"`
}

func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ctx := r.Context()
	householdID := auth.HouseholdID(ctx)
	rd, err := h.rewards.Redeem(ctx, auth.ChildID(ctx), householdID, req.RewardID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	broadcast(h.hub, householdID, websocket.NewMessage("redemption", "created", rd.ID, nil))
	if h.notifier != nil && rd.Child != nil && rd.Reward != nil {
		go h.notifier.RewardRequested(context.WithoutCancel(ctx), householdID, rd.Child.Name, rd.Reward.Name)
	}
	writeJSON(w, http.StatusCreated, rd)
}

func (h *RewardHandler) MyRedemptions(w http.ResponseWriter, r *http.Request) {
	rds, err := h.rewards.RedemptionsForChild(r.Context(), auth.ChildID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rds))
}

func (h *RewardHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	rds, err := h.rewards.RedemptionsForHousehold(r.Context(), auth.HouseholdID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rds))
}

type redemptionStatusRequest struct {
	Status string `json:"status"`
}

func (h *RewardHandler) UpdateRedemption(w http.ResponseWriter, r *http.Request) {
	var req redemptionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	householdID := auth.HouseholdID(r.Context())
	rd, err := h.rewards.UpdateStatus(r.Context(), r.PathValue("id"), householdID, req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	broadcast(h.hub, householdID, websocket.NewMessage("redemption", "updated", rd.ID, map[string]any{"status": rd.Status}))
	writeJSON(w, http.StatusOK, rd)
}
