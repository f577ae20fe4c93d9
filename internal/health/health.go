// Package health scores a business's financial position from its cashflow
// figures: runway in days, a qualitative label, and return on capital.
package health

// Label is the qualitative health classification shown on the dashboard.
type Label string

const (
	LabelCritical Label = "critical"
	LabelWarning  Label = "warning"
	LabelHealthy  Label = "healthy"
)

// Runway thresholds in days. Kept as named constants so widgets and the
// scorer agree on the boundaries.
const (
	CriticalRunwayDays = 15.0
	WarningRunwayDays  = 30.0
)

const daysPerMonth = 30.0

// Input groups the figures the scorer combines. TargetNet and DailySalesQty
// come from the business's active project; the rest are bookkeeping entries.
//
// UnpaidLiabilities is carried for dashboard display only: runway measures
// cash against the fixed-cost burn, and folding receivable debt into it
// would overstate how soon the cash runs out.
type Input struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalExpense      float64 `json:"totalExpense"`
	UnpaidLiabilities float64 `json:"unpaidLiabilities"`
	MonthlyFixedCost  float64 `json:"monthlyFixedCost"`
	TargetNet         float64 `json:"targetNet"`
	DailySalesQty     float64 `json:"dailySalesQty"`
	CashOnHand        float64 `json:"cashOnHand"`
	InitialCapital    float64 `json:"initialCapital"`
}

// Thresholds configures the runway boundaries used for labeling.
type Thresholds struct {
	CriticalDays float64
	WarningDays  float64
}

// DefaultThresholds returns the standard runway boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: CriticalRunwayDays, WarningDays: WarningRunwayDays}
}

// Report is the scorer output. Every ratio is zero-guarded: a zero divisor
// yields 0, never NaN or Inf.
type Report struct {
	Score             float64 `json:"score"`
	Label             Label   `json:"label"`
	DailyBurn         float64 `json:"dailyBurn"`
	RunwayDays        float64 `json:"runwayDays"`
	MonthlyNetProfit  float64 `json:"monthlyNetProfit"`
	ROIPercent        float64 `json:"roiPercent"`
	SavingsPercentage float64 `json:"savingsPercentage"`
	NetCashflow       float64 `json:"netCashflow"`
}

// Evaluate combines the business figures into a health report.
//
// Daily burn is the monthly fixed cost spread over 30 days; runway is how
// many of those days the current cash covers. The score scales runway
// against the warning threshold into 0..100. Monthly net profit is the
// active project's per-unit target net times simulated daily sales over a
// 30-day month.
func Evaluate(in Input, th Thresholds) Report {
	if th.CriticalDays <= 0 || th.WarningDays <= 0 {
		th = DefaultThresholds()
	}

	r := Report{
		NetCashflow:      in.TotalRevenue - in.TotalExpense,
		DailyBurn:        in.MonthlyFixedCost / daysPerMonth,
		MonthlyNetProfit: in.TargetNet * in.DailySalesQty * daysPerMonth,
	}

	if r.DailyBurn > 0 {
		r.RunwayDays = in.CashOnHand / r.DailyBurn
	}
	if in.InitialCapital > 0 {
		r.ROIPercent = r.MonthlyNetProfit / in.InitialCapital * 100
	}
	if in.TotalRevenue > 0 {
		r.SavingsPercentage = r.NetCashflow / in.TotalRevenue * 100
	}

	switch {
	case r.RunwayDays < th.CriticalDays:
		r.Label = LabelCritical
	case r.RunwayDays < th.WarningDays:
		r.Label = LabelWarning
	default:
		r.Label = LabelHealthy
	}

	r.Score = r.RunwayDays / th.WarningDays * 100
	if r.Score > 100 {
		r.Score = 100
	}
	if r.Score < 0 {
		r.Score = 0
	}

	return r
}
