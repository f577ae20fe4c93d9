// Package hpp computes the effective cost of goods produced (Harga Pokok
// Produksi) for a single menu item from its itemized cost entries and the
// merchant's production cadence.
package hpp

// Allocation describes how a cost entry's amount relates to one produced unit.
type Allocation string

const (
	// AllocationUnit means the amount is already a per-unit cost.
	AllocationUnit Allocation = "unit"
	// AllocationBulk means the amount was paid once for a batch and must be
	// amortized across the units or days that batch covers.
	AllocationBulk Allocation = "bulk"
)

// BulkUnit disambiguates what a bulk entry's BatchYield counts.
type BulkUnit string

const (
	BulkUnits BulkUnit = "units"
	BulkDays  BulkUnit = "days"
)

// Period is the cadence a merchant plans production around.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// CostEntry is one line item contributing to a product's cost.
//
// MinAmount/MaxAmount only carry meaning when IsRange is set; they record
// price volatility for sensitivity display and never enter the summed total.
// The Detail* fields are itemized-display metadata with no effect on math.
type CostEntry struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Amount     float64    `json:"amount"`
	IsRange    bool       `json:"isRange,omitempty"`
	MinAmount  float64    `json:"minAmount,omitempty"`
	MaxAmount  float64    `json:"maxAmount,omitempty"`
	Allocation Allocation `json:"allocation"`
	BatchYield float64    `json:"batchYield,omitempty"`
	BulkUnit   BulkUnit   `json:"bulkUnit,omitempty"`

	DetailTotalQty   float64 `json:"detailTotalQty,omitempty"`
	DetailPerPortion float64 `json:"detailPerPortion,omitempty"`
	DetailUnit       string  `json:"detailUnit,omitempty"`
}

// ProductionConfig is the operating cadence of a menu item.
type ProductionConfig struct {
	Period      Period  `json:"period"`
	DaysActive  float64 `json:"daysActive"`
	TargetUnits float64 `json:"targetUnits"`
}

// Contribution is one entry's share of the effective unit cost. Invalid
// entries are clamped to zero and flagged rather than failing the total.
type Contribution struct {
	EntryID string  `json:"entryId"`
	Name    string  `json:"name"`
	PerUnit float64 `json:"perUnit"`
	Invalid bool    `json:"invalid,omitempty"`
	Warning string  `json:"warning,omitempty"`
}

// TotalPerUnit sums the effective per-unit cost across all entries.
// Allocation is linear per entry: the total of a list equals the sum of the
// totals of its singletons.
func TotalPerUnit(costs []CostEntry, cfg ProductionConfig) float64 {
	total := 0.0
	for _, c := range costs {
		v, _ := entryPerUnit(c, c.Amount, cfg)
		total += v
	}
	return total
}

// Contributions returns the per-entry breakdown behind TotalPerUnit,
// including warnings for entries that were clamped to zero.
func Contributions(costs []CostEntry, cfg ProductionConfig) []Contribution {
	out := make([]Contribution, 0, len(costs))
	for _, c := range costs {
		v, warn := entryPerUnit(c, c.Amount, cfg)
		out = append(out, Contribution{
			EntryID: c.ID,
			Name:    c.Name,
			PerUnit: v,
			Invalid: warn != "",
			Warning: warn,
		})
	}
	return out
}

// RangeSpread returns the low and high per-unit totals when every range
// entry is evaluated at its min and max amount respectively. Non-range
// entries contribute their regular amount to both bounds. Advisory only.
func RangeSpread(costs []CostEntry, cfg ProductionConfig) (low, high float64) {
	for _, c := range costs {
		amountLow, amountHigh := c.Amount, c.Amount
		if c.IsRange {
			amountLow, amountHigh = c.MinAmount, c.MaxAmount
		}
		l, _ := entryPerUnit(c, amountLow, cfg)
		h, _ := entryPerUnit(c, amountHigh, cfg)
		low += l
		high += h
	}
	return low, high
}

// entryPerUnit evaluates a single entry at the given amount. It returns the
// per-unit contribution and a non-empty warning when the entry is degenerate
// (negative amount, bulk without a positive yield). Degenerate entries count
// as zero so one bad line never breaks the aggregate.
func entryPerUnit(c CostEntry, amount float64, cfg ProductionConfig) (float64, string) {
	if amount < 0 {
		return 0, "negative amount"
	}

	switch c.Allocation {
	case AllocationBulk:
		if c.BatchYield <= 0 {
			return 0, "bulk entry without positive batch yield"
		}
		if c.BulkUnit == BulkDays {
			// Amount buys BatchYield operating days. The full-period cost is
			// dailyCost * DaysActive, spread evenly across TargetUnits. With
			// no planned production there is no derivable unit cost.
			if cfg.TargetUnits <= 0 {
				return 0, ""
			}
			daily := amount / c.BatchYield
			return daily * cfg.DaysActive / cfg.TargetUnits, ""
		}
		return amount / c.BatchYield, ""
	default:
		// unit allocation: already normalized per product unit.
		return amount, ""
	}
}
