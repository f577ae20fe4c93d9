package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type importRequest struct {
	BusinessID string `json:"businessId"`
	Input      string `json:"input"`
}

// handleImport turns a free-form product description into a stored project.
// With an Anthropic key configured the text goes through the model first;
// without one the input must already be the JSON document itself.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.BusinessID) == "" {
		writeError(w, http.StatusBadRequest, "businessId is required")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	p, err := s.importer.Import(r.Context(), req.BusinessID, req.Input)
	if err != nil {
		s.log.Error("import failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "could not turn the input into a project")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}
