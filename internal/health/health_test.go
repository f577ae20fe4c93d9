package health

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestEvaluate_RunwayBelowCriticalThreshold(t *testing.T) {
	report := Evaluate(Input{
		MonthlyFixedCost: 3000000,
		CashOnHand:       1000000,
	}, DefaultThresholds())

	nearlyEqual(t, "dailyBurn", report.DailyBurn, 100000)
	nearlyEqual(t, "runwayDays", report.RunwayDays, 10)
	if report.Label != LabelCritical {
		t.Fatalf("label = %q, want %q", report.Label, LabelCritical)
	}
}

func TestEvaluate_LabelBoundaries(t *testing.T) {
	tests := []struct {
		name string
		cash float64
		want Label
	}{
		{"just under critical", 1499999, LabelCritical},
		{"at critical boundary", 1500000, LabelWarning},
		{"just under warning", 2999999, LabelWarning},
		{"at warning boundary", 3000000, LabelHealthy},
		{"well funded", 9000000, LabelHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Evaluate(Input{
				MonthlyFixedCost: 3000000, // 100000/day
				CashOnHand:       tt.cash,
			}, DefaultThresholds())
			if report.Label != tt.want {
				t.Fatalf("label = %q, want %q (runway %v)", report.Label, tt.want, report.RunwayDays)
			}
		})
	}
}

func TestEvaluate_ZeroDivisorsNeverProduceNaN(t *testing.T) {
	report := Evaluate(Input{
		TotalRevenue:     0,
		MonthlyFixedCost: 0,
		CashOnHand:       500000,
		InitialCapital:   0,
		TargetNet:        2000,
		DailySalesQty:    10,
	}, DefaultThresholds())

	for name, v := range map[string]float64{
		"runwayDays":        report.RunwayDays,
		"roiPercent":        report.ROIPercent,
		"savingsPercentage": report.SavingsPercentage,
		"score":             report.Score,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
	nearlyEqual(t, "runwayDays", report.RunwayDays, 0)
	nearlyEqual(t, "roiPercent", report.ROIPercent, 0)
	nearlyEqual(t, "savingsPercentage", report.SavingsPercentage, 0)
}

func TestEvaluate_ROIAndSavings(t *testing.T) {
	report := Evaluate(Input{
		TotalRevenue:     10000000,
		TotalExpense:     7500000,
		MonthlyFixedCost: 3000000,
		CashOnHand:       9000000,
		InitialCapital:   15000000,
		TargetNet:        2000,
		DailySalesQty:    25,
	}, DefaultThresholds())

	nearlyEqual(t, "netCashflow", report.NetCashflow, 2500000)
	nearlyEqual(t, "savingsPercentage", report.SavingsPercentage, 25)
	nearlyEqual(t, "monthlyNetProfit", report.MonthlyNetProfit, 1500000)
	nearlyEqual(t, "roiPercent", report.ROIPercent, 10)
	nearlyEqual(t, "runwayDays", report.RunwayDays, 90)
	nearlyEqual(t, "score capped", report.Score, 100)
	if report.Label != LabelHealthy {
		t.Fatalf("label = %q, want %q", report.Label, LabelHealthy)
	}
}

func TestEvaluate_UnpaidLiabilitiesAreDisplayOnly(t *testing.T) {
	in := Input{
		TotalRevenue:     10000000,
		TotalExpense:     7500000,
		MonthlyFixedCost: 3000000,
		CashOnHand:       9000000,
		InitialCapital:   15000000,
		TargetNet:        2000,
		DailySalesQty:    25,
	}

	without := Evaluate(in, DefaultThresholds())
	in.UnpaidLiabilities = 4000000
	with := Evaluate(in, DefaultThresholds())

	if with != without {
		t.Fatalf("report changed with liabilities: got %+v, want %+v", with, without)
	}
}

func TestEvaluate_ZeroThresholdsFallBackToDefaults(t *testing.T) {
	report := Evaluate(Input{
		MonthlyFixedCost: 3000000,
		CashOnHand:       1000000,
	}, Thresholds{})

	if report.Label != LabelCritical {
		t.Fatalf("label = %q, want %q", report.Label, LabelCritical)
	}
}
