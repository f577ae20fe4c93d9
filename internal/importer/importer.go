// Package importer turns untrusted, possibly AI-generated JSON into valid
// projects. The generative call is isolated behind the Client interface;
// everything that reaches the calculation engine goes through Sanitize
// first, so a half-filled or malformed payload can never crash a
// calculation.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/untunglab/juragan/internal/hpp"
	"github.com/untunglab/juragan/internal/pricing"
	"github.com/untunglab/juragan/internal/project"
)

// Client completes a merchant's unstructured input into a best-effort
// project JSON document.
type Client interface {
	CompleteProject(ctx context.Context, input string) (json.RawMessage, error)
}

// Service runs imports end to end: optional AI completion, sanitization,
// persistence.
type Service struct {
	client Client
	store  *project.Store
	log    *zap.Logger
}

// NewService builds an import service. client may be nil, in which case the
// raw input must already be JSON.
func NewService(client Client, store *project.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, store: store, log: log}
}

// Import creates a project for the business from unstructured input. When an
// AI client is configured the input is first completed by it; otherwise the
// input is parsed as-is.
func (s *Service) Import(ctx context.Context, businessID, input string) (project.Project, error) {
	raw := json.RawMessage(input)
	if s.client != nil {
		completed, err := s.client.CompleteProject(ctx, input)
		if err != nil {
			return project.Project{}, fmt.Errorf("complete project with ai: %w", err)
		}
		raw = completed
	}

	p, err := Sanitize(raw, businessID)
	if err != nil {
		return project.Project{}, err
	}

	if err := s.store.Create(ctx, &p); err != nil {
		return project.Project{}, err
	}

	s.log.Info("imported project",
		zap.String("business_id", businessID),
		zap.String("project_id", p.ID),
		zap.Int("cost_entries", len(p.Costs)))
	return p, nil
}

// rawProject mirrors the project JSON shape with every field optional, so
// partial AI output unmarshals without loss.
type rawProject struct {
	Name            *string        `json:"name"`
	Costs           []rawCostEntry `json:"costs"`
	Production      *rawProduction `json:"productionConfig"`
	Strategy        *string        `json:"pricingStrategy"`
	TargetNet       *float64       `json:"targetNet"`
	CompetitorPrice *float64       `json:"competitorPrice"`
	Confidence      *string        `json:"confidence"`
}

type rawCostEntry struct {
	ID         *string  `json:"id"`
	Name       *string  `json:"name"`
	Amount     *float64 `json:"amount"`
	IsRange    *bool    `json:"isRange"`
	MinAmount  *float64 `json:"minAmount"`
	MaxAmount  *float64 `json:"maxAmount"`
	Allocation *string  `json:"allocation"`
	BatchYield *float64 `json:"batchYield"`
	BulkUnit   *string  `json:"bulkUnit"`
}

type rawProduction struct {
	Period      *string  `json:"period"`
	DaysActive  *float64 `json:"daysActive"`
	TargetUnits *float64 `json:"targetUnits"`
}

// Sanitize maps arbitrary JSON into a valid project using the same
// defaulting rules as project.Default. It fails only on unparseable JSON;
// missing or nonsensical fields are defaulted, never fatal.
func Sanitize(raw json.RawMessage, businessID string) (project.Project, error) {
	var in rawProject
	if err := json.Unmarshal(raw, &in); err != nil {
		return project.Project{}, fmt.Errorf("parse import payload: %w", err)
	}

	name := "Produk impor"
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		name = strings.TrimSpace(*in.Name)
	}

	p := project.Default(businessID, name)

	if len(in.Costs) > 0 {
		costs := make([]hpp.CostEntry, 0, len(in.Costs))
		for i, c := range in.Costs {
			costs = append(costs, sanitizeCost(c, i))
		}
		p.Costs = costs
	}

	if in.Production != nil {
		if in.Production.Period != nil {
			switch hpp.Period(*in.Production.Period) {
			case hpp.PeriodDaily, hpp.PeriodWeekly, hpp.PeriodMonthly:
				p.Production.Period = hpp.Period(*in.Production.Period)
			}
		}
		if in.Production.DaysActive != nil && *in.Production.DaysActive > 0 {
			p.Production.DaysActive = *in.Production.DaysActive
		}
		if in.Production.TargetUnits != nil && *in.Production.TargetUnits >= 0 {
			p.Production.TargetUnits = *in.Production.TargetUnits
		}
	}

	if in.Strategy != nil {
		switch pricing.Strategy(*in.Strategy) {
		case pricing.StrategyMarkup, pricing.StrategyCompetitor:
			p.Strategy = pricing.Strategy(*in.Strategy)
		}
	}
	if in.TargetNet != nil && *in.TargetNet >= 0 {
		p.TargetNet = *in.TargetNet
	}
	if in.CompetitorPrice != nil && *in.CompetitorPrice >= 0 {
		p.CompetitorPrice = *in.CompetitorPrice
	}
	if in.Confidence != nil {
		switch project.Confidence(*in.Confidence) {
		case project.ConfidenceHigh, project.ConfidenceMedium, project.ConfidenceLow:
			p.Confidence = project.Confidence(*in.Confidence)
		}
	}

	return p, nil
}

func sanitizeCost(c rawCostEntry, index int) hpp.CostEntry {
	out := hpp.CostEntry{
		ID:         fmt.Sprintf("cost-%d", index+1),
		Name:       "Biaya",
		Allocation: hpp.AllocationUnit,
	}

	if c.ID != nil && strings.TrimSpace(*c.ID) != "" {
		out.ID = strings.TrimSpace(*c.ID)
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		out.Name = strings.TrimSpace(*c.Name)
	}
	if c.Amount != nil && *c.Amount >= 0 {
		out.Amount = *c.Amount
	}
	if c.Allocation != nil && hpp.Allocation(*c.Allocation) == hpp.AllocationBulk {
		out.Allocation = hpp.AllocationBulk
		out.BulkUnit = hpp.BulkUnits
		if c.BatchYield != nil && *c.BatchYield > 0 {
			out.BatchYield = *c.BatchYield
		}
		if c.BulkUnit != nil && hpp.BulkUnit(*c.BulkUnit) == hpp.BulkDays {
			out.BulkUnit = hpp.BulkDays
		}
	}
	if c.IsRange != nil && *c.IsRange && c.MinAmount != nil && c.MaxAmount != nil &&
		*c.MinAmount >= 0 && *c.MaxAmount >= *c.MinAmount {
		out.IsRange = true
		out.MinAmount = *c.MinAmount
		out.MaxAmount = *c.MaxAmount
	}

	return out
}
