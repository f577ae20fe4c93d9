package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/untunglab/juragan/internal/platform"
	"github.com/untunglab/juragan/internal/pricing"
)

func (s *server) handleConfigsList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	configs, err := s.platforms.List(r.Context(), category)
	if err != nil {
		s.log.Error("failed to list platform configs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load platform configs")
		return
	}

	writeJSON(w, http.StatusOK, configs)
}

func validatePlatformConfig(p pricing.PlatformConfig) string {
	switch {
	case strings.TrimSpace(p.Code) == "":
		return "code is required"
	case strings.TrimSpace(p.Name) == "":
		return "name is required"
	case p.Commission < 0 || p.Commission >= 1:
		return "commission must be a fraction below 1"
	case p.FixedFee < 0:
		return "fixedFee must not be negative"
	case p.WithdrawalFee < 0:
		return "withdrawalFee must not be negative"
	}
	return ""
}

func (s *server) handleConfigCreate(w http.ResponseWriter, r *http.Request) {
	var p pricing.PlatformConfig
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if msg := validatePlatformConfig(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := s.platforms.Get(r.Context(), p.Code); err == nil {
		writeError(w, http.StatusConflict, "platform code already exists")
		return
	} else if !errors.Is(err, platform.ErrNotFound) {
		s.log.Error("failed to check platform config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save platform config")
		return
	}

	if err := s.platforms.Create(r.Context(), p); err != nil {
		s.log.Error("failed to create platform config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save platform config")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var p pricing.PlatformConfig
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	p.Code = chi.URLParam(r, "code")
	if msg := validatePlatformConfig(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	err := s.platforms.Update(r.Context(), p)
	if errors.Is(err, platform.ErrNotFound) {
		writeError(w, http.StatusNotFound, "platform config not found")
		return
	}
	if err != nil {
		s.log.Error("failed to update platform config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save platform config")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleConfigDelete(w http.ResponseWriter, r *http.Request) {
	err := s.platforms.Delete(r.Context(), chi.URLParam(r, "code"))
	if errors.Is(err, platform.ErrNotFound) {
		writeError(w, http.StatusNotFound, "platform config not found")
		return
	}
	if err != nil {
		s.log.Error("failed to delete platform config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete platform config")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
