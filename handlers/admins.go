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

type AdminHandler struct {
	registry *registry.Registry
	cfg      cliparse.Config
}

func NewAdminHandler(reg *registry.Registry, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{registry: reg, cfg: cfg}
}

// Login handles POST /api/admins/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.registry.AuthenticateAdmin(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err, "admin login")
		return
	}

	token, err := auth.IssueToken(req.Username, models.RoleAdmin, h.cfg.TokenSecret, h.cfg.TokenTTL, time.Now())
	if err != nil {
		writeError(w, err, "issue token")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TokenResponse{Token: token, Role: models.RoleAdmin})
}

// List handles GET /api/admins
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.registry.ListAdmins(r.Context())
	if err != nil {
		writeError(w, err, "list admins")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.AdminsResponse{Admins: admins})
}

// Create handles POST /api/admins
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAdminRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.registry.CreateAdmin(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err, "create admin")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.MessageResponse{Message: "Admin created"})
}

// ChangePassword handles POST /api/admins/change-password
func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	var req models.ChangePasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.registry.ChangeAdminPassword(r.Context(), id.Subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, err, "change admin password")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Password changed"})
}
