// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/models"
)

// maxMultipartMemory bounds candidate form uploads held in memory
const maxMultipartMemory = 10 << 20

type CandidateHandler struct {
	catalog *catalog.Catalog
}

func NewCandidateHandler(cat *catalog.Catalog) *CandidateHandler {
	return &CandidateHandler{catalog: cat}
}

// List handles GET /api/candidates?type=&constituency=&includeRetired=
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	electionType := strings.ToLower(q.Get("type"))
	if electionType != "" && !models.ValidElectionType(electionType) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "type must be presidential or parliamentary")
		return
	}

	includeRetired := false
	if v := q.Get("includeRetired"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "includeRetired must be a boolean")
			return
		}
		includeRetired = b
	}

	candidates, err := h.catalog.ListCandidates(r.Context(), catalog.Filter{
		Type:           electionType,
		Constituency:   q.Get("constituency"),
		IncludeRetired: includeRetired,
	})
	if err != nil {
		writeError(w, err, "list candidates")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{Candidates: candidates})
}

// Create handles POST /api/candidates (admin, multipart or JSON)
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := parseCandidateRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))

	cand, err := h.catalog.CreateCandidate(r.Context(), req)
	if err != nil {
		writeError(w, err, "create candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, cand)
}

// Update handles PUT /api/candidates/{id} (admin)
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := parseCandidateRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))

	cand, err := h.catalog.UpdateCandidate(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err, "update candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, cand)
}

// Delete handles DELETE /api/candidates/{id} (admin)
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.DeleteCandidate(r.Context(), r.PathValue("id"))
	if errors.Is(err, catalog.ErrCandidateHasBallots) {
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate has ballots; retire it instead")
		return
	}
	if err != nil {
		writeError(w, err, "delete candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Candidate deleted"})
}

// Retire handles POST /api/candidates/{id}/retire (admin)
func (h *CandidateHandler) Retire(w http.ResponseWriter, r *http.Request) {
	cand, err := h.catalog.RetireCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "retire candidate")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cand)
}

// parseCandidateRequest reads a candidate from a multipart form or a JSON
// body. An uploaded image file is kept only as a reference to its name.
func parseCandidateRequest(r *http.Request) (models.CandidateRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req models.CandidateRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			return models.CandidateRequest{}, errors.New("invalid JSON body")
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return models.CandidateRequest{}, errors.New("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	req := models.CandidateRequest{
		Name:         r.FormValue("name"),
		Party:        r.FormValue("party"),
		Type:         r.FormValue("type"),
		Constituency: r.FormValue("constituency"),
		Image:        r.FormValue("image"),
	}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		req.Image = path.Base(files[0].Filename)
	}
	return req, nil
}
