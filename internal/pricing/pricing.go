// Package pricing simulates marketplace fee schedules and recommends selling
// prices per sales channel.
package pricing

import (
	"github.com/untunglab/juragan/internal/hpp"
)

// Strategy selects how a selling price is derived.
type Strategy string

const (
	// StrategyMarkup fixes the desired net profit and solves for price.
	StrategyMarkup Strategy = "markup"
	// StrategyCompetitor pins the price to a market benchmark and derives
	// the resulting profit, which may legitimately be negative.
	StrategyCompetitor Strategy = "competitor"
)

// ErrFeeExceedsPrice flags a markup calculation whose percentage deductions
// meet or exceed the whole price, so no finite price satisfies the target.
const ErrFeeExceedsPrice = "fee_exceeds_price"

// PlatformConfig is one sales channel's fee schedule. Commission is a
// fraction of the transaction (0..1); FixedFee is charged per transaction;
// WithdrawalFee is charged per balance withdrawal, not per sale.
type PlatformConfig struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Commission    float64 `json:"commission"`
	FixedFee      float64 `json:"fixedFee"`
	WithdrawalFee float64 `json:"withdrawalFee"`
	Category      string  `json:"category"`
	Active        bool    `json:"active"`
}

// Overrides adjusts a platform's fees for a single calculation without
// touching the stored config. A nil field keeps the platform default; a set
// field replaces it entirely.
type Overrides struct {
	Commission    *float64 `json:"commission,omitempty"`
	FixedFee      *float64 `json:"fixedFee,omitempty"`
	WithdrawalFee *float64 `json:"withdrawalFee,omitempty"`
}

// FeeSchedule is the effective fee set after override merging.
type FeeSchedule struct {
	Commission    float64 `json:"commission"`
	FixedFee      float64 `json:"fixedFee"`
	WithdrawalFee float64 `json:"withdrawalFee"`
}

// Fees merges per-calculation overrides onto the platform defaults.
func (p PlatformConfig) Fees(o *Overrides) FeeSchedule {
	fees := FeeSchedule{
		Commission:    p.Commission,
		FixedFee:      p.FixedFee,
		WithdrawalFee: p.WithdrawalFee,
	}
	if o == nil {
		return fees
	}
	if o.Commission != nil {
		fees.Commission = *o.Commission
	}
	if o.FixedFee != nil {
		fees.FixedFee = *o.FixedFee
	}
	if o.WithdrawalFee != nil {
		fees.WithdrawalFee = *o.WithdrawalFee
	}
	return fees
}

// ProjectInput is the slice of a project the engine needs. The engine is
// pure: it receives data by value and holds no state between calls.
type ProjectInput struct {
	Costs           []hpp.CostEntry
	Production      hpp.ProductionConfig
	Strategy        Strategy
	TargetNet       float64
	CompetitorPrice float64
}

// Scenario holds the economics of selling at one price on one platform.
//
// WithdrawalPerUnit amortizes the platform's withdrawal fee across the
// period's target units (zero when no production is planned). It is part of
// TotalDeductions so the cashflow picture is complete, but it is kept out of
// NetProfit: folding a per-withdrawal cost into per-unit profit would
// misstate unit economics.
type Scenario struct {
	Price             float64 `json:"price"`
	NetProfit         float64 `json:"netProfit"`
	CommissionFee     float64 `json:"commissionFee"`
	TaxFee            float64 `json:"taxFee"`
	FixedFee          float64 `json:"fixedFee"`
	WithdrawalPerUnit float64 `json:"withdrawalPerUnit"`
	TotalDeductions   float64 `json:"totalDeductions"`
}

// Result is one platform's outcome. When Err is set (markup mode with
// commission+tax >= 100%) the scenarios are zero-valued and must not be
// shown as prices. A negative NetProfit with an empty Err is a valid
// competitor-mode outcome, not an error.
type Result struct {
	Platform      string      `json:"platform"`
	PlatformName  string      `json:"platformName,omitempty"`
	Fees          FeeSchedule `json:"fees"`
	EffectiveCost float64     `json:"effectiveCost"`
	Err           string      `json:"error,omitempty"`
	Recommended   Scenario    `json:"recommended"`
	WithPromo     Scenario    `json:"withPromo"`
}

// Calculate computes, for every given platform, the selling price and
// resulting profit under the project's pricing strategy, both at the nominal
// price and with a promoPercent discount applied. taxRate is a fraction of
// the selling price, like commission. promoPercent is 0..100.
func Calculate(proj ProjectInput, platforms []PlatformConfig, overrides map[string]Overrides, promoPercent, taxRate float64) []Result {
	cost := hpp.TotalPerUnit(proj.Costs, proj.Production)

	results := make([]Result, 0, len(platforms))
	for _, p := range platforms {
		var ov *Overrides
		if o, ok := overrides[p.Code]; ok {
			ov = &o
		}
		fees := p.Fees(ov)

		res := Result{
			Platform:      p.Code,
			PlatformName:  p.Name,
			Fees:          fees,
			EffectiveCost: cost,
		}

		var price float64
		switch proj.Strategy {
		case StrategyCompetitor:
			price = proj.CompetitorPrice
		default:
			denom := 1 - fees.Commission - taxRate
			if denom <= 0 {
				res.Err = ErrFeeExceedsPrice
				results = append(results, res)
				continue
			}
			price = (cost + proj.TargetNet + fees.FixedFee) / denom
		}

		wdPerUnit := 0.0
		if proj.Production.TargetUnits > 0 {
			wdPerUnit = fees.WithdrawalFee / proj.Production.TargetUnits
		}

		res.Recommended = scenarioAt(price, cost, fees, taxRate, wdPerUnit)
		res.WithPromo = scenarioAt(price*(1-promoPercent/100), cost, fees, taxRate, wdPerUnit)
		results = append(results, res)
	}

	return results
}

// scenarioAt prices out one selling price: percentage fees scale with the
// price, flat fees do not, cost stays fixed.
func scenarioAt(price, cost float64, fees FeeSchedule, taxRate, wdPerUnit float64) Scenario {
	commissionFee := fees.Commission * price
	taxFee := taxRate * price
	return Scenario{
		Price:             price,
		NetProfit:         price - commissionFee - taxFee - fees.FixedFee - cost,
		CommissionFee:     commissionFee,
		TaxFee:            taxFee,
		FixedFee:          fees.FixedFee,
		WithdrawalPerUnit: wdPerUnit,
		TotalDeductions:   commissionFee + taxFee + fees.FixedFee + wdPerUnit,
	}
}
