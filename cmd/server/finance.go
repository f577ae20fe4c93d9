package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/untunglab/juragan/internal/finance"
	"github.com/untunglab/juragan/internal/health"
	"github.com/untunglab/juragan/internal/project"
)

func (s *server) handleFinanceGet(w http.ResponseWriter, r *http.Request) {
	figures, err := s.finance.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error("failed to load finance figures", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load finance figures")
		return
	}

	writeJSON(w, http.StatusOK, figures)
}

func (s *server) handleFinancePut(w http.ResponseWriter, r *http.Request) {
	var figures finance.Figures
	if err := json.NewDecoder(r.Body).Decode(&figures); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	figures.BusinessID = chi.URLParam(r, "id")

	if err := s.finance.Put(r.Context(), figures); err != nil {
		s.log.Error("failed to save finance figures", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save finance figures")
		return
	}

	writeJSON(w, http.StatusOK, figures)
}

// handleHealthGet evaluates the business's runway and profitability from the
// stored bookkeeping figures. The monthly profit target comes from the active
// project when one is selected.
func (s *server) handleHealthGet(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "id")

	figures, err := s.finance.Get(r.Context(), businessID)
	if err != nil {
		s.log.Error("failed to load finance figures", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to evaluate health")
		return
	}

	var targetNet float64
	active, ok, err := s.projects.Active(r.Context(), businessID)
	if err != nil && !errors.Is(err, project.ErrNotFound) {
		s.log.Error("failed to load active project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to evaluate health")
		return
	}
	if ok {
		targetNet = active.TargetNet
	}

	report := health.Evaluate(figures.HealthInput(targetNet), health.DefaultThresholds())
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleHealthHistory(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	snapshots, err := s.finance.Snapshots(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.log.Error("failed to load health snapshots", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load health snapshots")
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}
