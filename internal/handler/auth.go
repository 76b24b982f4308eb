package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/household"
)

type AuthHandler struct {
	households *household.Service
	logger     *slog.Logger
}

func NewAuthHandler(hs *household.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{households: hs, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	sess, err := h.households.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	sess, err := h.households.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type childLoginRequest struct {
	HouseholdCode string `json:"household_code"`
	ChildName     string `json:"child_name"`
	PIN           string `json:"pin"`
}

func (h *AuthHandler) ChildLogin(w http.ResponseWriter, r *http.Request) {
	var req childLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	sess, err := h.households.ChildLogin(r.Context(), req.HouseholdCode, req.ChildName, req.PIN)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.households.Me(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
