package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/untunglab/juragan/internal/hpp"
	"github.com/untunglab/juragan/internal/pricing"
	"github.com/untunglab/juragan/internal/project"
)

func (s *server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("businessId"))
	if businessID == "" {
		writeError(w, http.StatusBadRequest, "businessId is required")
		return
	}

	projects, err := s.projects.List(r.Context(), businessID)
	if err != nil {
		s.log.Error("failed to list projects", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load projects")
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (s *server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var p project.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(p.BusinessID) == "" {
		writeError(w, http.StatusBadRequest, "businessId is required")
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	// The store normalizes on write, so a bare {businessId, name} body gets
	// the standard seeded defaults.
	if err := s.projects.Create(r.Context(), &p); err != nil {
		s.log.Error("failed to create project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.projects.Get(r.Context(), id)
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	var p project.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	p.ID = id
	p.BusinessID = existing.BusinessID
	p.CreatedAt = existing.CreatedAt

	if err := s.projects.Update(r.Context(), &p); err != nil {
		s.log.Error("failed to update project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	err := s.projects.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("failed to delete project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProjectActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.projects.Get(r.Context(), id)
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	if err := s.projects.Activate(r.Context(), p.BusinessID, id); err != nil {
		s.log.Error("failed to activate project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to activate project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleActiveProject(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "id")

	p, ok, err := s.projects.Active(r.Context(), businessID)
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load active project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load active project")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no active project")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

type pricingRequest struct {
	Overrides    map[string]pricing.Overrides `json:"overrides"`
	PromoPercent float64                      `json:"promoPercent"`
	TaxRate      float64                      `json:"taxRate"`
}

type pricingResponse struct {
	EffectiveCost float64            `json:"effectiveCost"`
	Contributions []hpp.Contribution `json:"contributions"`
	RangeLow      float64            `json:"rangeLow"`
	RangeHigh     float64            `json:"rangeHigh"`
	Results       []pricing.Result   `json:"results"`
}

func (s *server) handleProjectPricing(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.log.Error("failed to load project", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	var req pricingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}
	if req.PromoPercent < 0 || req.PromoPercent > 100 {
		writeError(w, http.StatusBadRequest, "promoPercent must be between 0 and 100")
		return
	}
	if req.TaxRate < 0 || req.TaxRate >= 1 {
		writeError(w, http.StatusBadRequest, "taxRate must be a fraction below 1")
		return
	}

	platforms, err := s.platforms.ListActive(r.Context())
	if err != nil {
		s.log.Error("failed to load platform configs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load platform configs")
		return
	}

	// Unknown override keys are a caller bug; surface them instead of
	// silently ignoring the what-if adjustment.
	known := make(map[string]bool, len(platforms))
	for _, pc := range platforms {
		known[pc.Code] = true
	}
	for code := range req.Overrides {
		if !known[code] {
			writeError(w, http.StatusBadRequest, "unknown platform code: "+code)
			return
		}
	}

	results := pricing.Calculate(p.PricingInput(), platforms, req.Overrides, req.PromoPercent, req.TaxRate)
	low, high := hpp.RangeSpread(p.Costs, p.Production)

	writeJSON(w, http.StatusOK, pricingResponse{
		EffectiveCost: hpp.TotalPerUnit(p.Costs, p.Production),
		Contributions: hpp.Contributions(p.Costs, p.Production),
		RangeLow:      low,
		RangeHigh:     high,
		Results:       results,
	})
}
