// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/models"
)

type ElectionHandler struct {
	catalog *catalog.Catalog
}

func NewElectionHandler(cat *catalog.Catalog) *ElectionHandler {
	return &ElectionHandler{catalog: cat}
}

// List handles GET /api/votes/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.catalog.ListElections(r.Context())
	if err != nil {
		writeError(w, err, "list elections")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ElectionsResponse{Elections: elections})
}

// Create handles POST /api/elections (admin)
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	election, err := h.catalog.CreateElection(r.Context(), req.Type, req.Constituency)
	if err != nil {
		writeError(w, err, "create election")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, election)
}
