// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/dabekoe/chain-choice-voting/auth"
	"github.com/dabekoe/chain-choice-voting/cliparse"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/registry"
)

type VoterHandler struct {
	registry *registry.Registry
	cfg      cliparse.Config
}

func NewVoterHandler(reg *registry.Registry, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{registry: reg, cfg: cfg}
}

// Register handles POST /api/voters/register
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.registry.Register(r.Context(), req); err != nil {
		writeError(w, err, "register voter")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.MessageResponse{
		Message: "Registration successful. A verification code has been sent to your email.",
	})
}

// Verify handles POST /api/voters/verify
func (h *VoterHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" || req.Token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and token are required")
		return
	}

	if err := h.registry.Verify(r.Context(), req.Email, req.Token); err != nil {
		writeError(w, err, "verify voter")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Voter verified"})
}

// ResendCode handles POST /api/voters/resend-code
func (h *VoterHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req models.ResendCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.registry.ResendCode(r.Context(), req.Email); err != nil {
		writeError(w, err, "resend verification code")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "A new verification code has been sent"})
}

// Login handles POST /api/voters/login
func (h *VoterHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.VoterLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter, err := h.registry.Authenticate(r.Context(), req.VoterID, req.Password)
	if err != nil {
		writeError(w, err, "voter login")
		return
	}

	token, err := auth.IssueToken(voter.ID, models.RoleVoter, h.cfg.TokenSecret, h.cfg.TokenTTL, time.Now())
	if err != nil {
		writeError(w, err, "issue token")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TokenResponse{Token: token, Role: models.RoleVoter})
}

// Me handles GET /api/voters/me
func (h *VoterHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	voter, err := h.registry.Get(r.Context(), id.Subject)
	if err != nil {
		writeError(w, err, "get voter")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voter)
}

// MarkVerified handles POST /api/voters/{id}/verify (admin)
func (h *VoterHandler) MarkVerified(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.MarkVerified(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "verify voter")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Voter verified"})
}

// Deactivate handles POST /api/voters/{id}/deactivate (admin)
func (h *VoterHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "deactivate voter")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Voter deactivated"})
}
