// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/tally"
)

type ResultsHandler struct {
	engine *tally.Engine
}

func NewResultsHandler(engine *tally.Engine) *ResultsHandler {
	return &ResultsHandler{engine: engine}
}

// GetResults handles GET /api/votes/results?type=&constituency=
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rows, err := h.engine.Results(r.Context(), tally.Filter{
		Type:         q.Get("type"),
		Constituency: q.Get("constituency"),
	})
	if err != nil {
		writeError(w, err, "compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{Results: rows})
}
