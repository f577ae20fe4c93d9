// Package project holds the priced-item aggregate, its sqlite store, and the
// per-business active-selection logic.
package project

import (
	"time"

	"github.com/untunglab/juragan/internal/hpp"
	"github.com/untunglab/juragan/internal/pricing"
)

// Confidence tags how much the merchant trusts the entered figures.
// Informational only; it never enters a calculation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Project is a priced menu item or SKU. Totals are always derived from
// Costs and Production at read time, never cached on the record.
type Project struct {
	ID              string               `json:"id"`
	BusinessID      string               `json:"businessId"`
	Name            string               `json:"name"`
	Costs           []hpp.CostEntry      `json:"costs"`
	Production      hpp.ProductionConfig `json:"productionConfig"`
	Strategy        pricing.Strategy     `json:"pricingStrategy"`
	TargetNet       float64              `json:"targetNet"`
	CompetitorPrice float64              `json:"competitorPrice"`
	Confidence      Confidence           `json:"confidence"`
	CreatedAt       time.Time            `json:"createdAt"`
	LastModified    time.Time            `json:"lastModified"`
}

// PricingInput extracts the slice of the project the pricing engine consumes.
func (p Project) PricingInput() pricing.ProjectInput {
	return pricing.ProjectInput{
		Costs:           p.Costs,
		Production:      p.Production,
		Strategy:        p.Strategy,
		TargetNet:       p.TargetNet,
		CompetitorPrice: p.CompetitorPrice,
	}
}

// Default returns a freshly seeded project for a business: one empty
// ingredient line and a monthly production plan, priced by markup.
func Default(businessID, name string) Project {
	return Project{
		BusinessID: businessID,
		Name:       name,
		Costs: []hpp.CostEntry{
			{ID: "bahan-baku", Name: "Bahan baku", Amount: 0, Allocation: hpp.AllocationUnit},
		},
		Production: hpp.ProductionConfig{
			Period:      hpp.PeriodMonthly,
			DaysActive:  26,
			TargetUnits: 100,
		},
		Strategy:   pricing.StrategyMarkup,
		TargetNet:  0,
		Confidence: ConfidenceMedium,
	}
}

// Normalize fills the gaps of a partially populated project in place so it
// can safely reach the calculation engine: missing cost list, production
// config, strategy or confidence fall back to Default values.
func (p *Project) Normalize() {
	def := Default(p.BusinessID, p.Name)

	if p.Costs == nil {
		p.Costs = def.Costs
	}
	if p.Production.Period == "" {
		p.Production.Period = def.Production.Period
	}
	if p.Production.DaysActive <= 0 {
		p.Production.DaysActive = def.Production.DaysActive
	}
	if p.Production.TargetUnits < 0 {
		p.Production.TargetUnits = 0
	}
	if p.Strategy != pricing.StrategyMarkup && p.Strategy != pricing.StrategyCompetitor {
		p.Strategy = def.Strategy
	}
	switch p.Confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		p.Confidence = def.Confidence
	}
}
