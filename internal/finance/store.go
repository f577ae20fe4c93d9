// Package finance persists per-business bookkeeping figures and the daily
// health snapshots derived from them.
package finance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/untunglab/juragan/internal/health"
)

// Figures are the merchant-entered bookkeeping numbers feeding the health
// scorer. The active project's target net and simulated sales quantity are
// joined in by the caller; they live on the project, not here.
type Figures struct {
	BusinessID        string  `json:"businessId"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalExpense      float64 `json:"totalExpense"`
	UnpaidLiabilities float64 `json:"unpaidLiabilities"`
	MonthlyFixedCost  float64 `json:"monthlyFixedCost"`
	DailySalesQty     float64 `json:"dailySalesQty"`
	CashOnHand        float64 `json:"cashOnHand"`
	InitialCapital    float64 `json:"initialCapital"`
}

// HealthInput merges the figures with the active project's target net.
func (f Figures) HealthInput(targetNet float64) health.Input {
	return health.Input{
		TotalRevenue:      f.TotalRevenue,
		TotalExpense:      f.TotalExpense,
		UnpaidLiabilities: f.UnpaidLiabilities,
		MonthlyFixedCost:  f.MonthlyFixedCost,
		TargetNet:         targetNet,
		DailySalesQty:     f.DailySalesQty,
		CashOnHand:        f.CashOnHand,
		InitialCapital:    f.InitialCapital,
	}
}

// Snapshot is one recorded health evaluation.
type Snapshot struct {
	BusinessID string    `json:"businessId"`
	TakenAt    time.Time `json:"takenAt"`
	Score      float64   `json:"score"`
	Label      string    `json:"label"`
	RunwayDays float64   `json:"runwayDays"`
}

// Store persists finance figures and snapshots.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns a business's figures. A business that never saved figures
// gets an all-zero row, which the scorer handles without blowing up.
func (s *Store) Get(ctx context.Context, businessID string) (Figures, error) {
	f := Figures{BusinessID: businessID}
	err := s.db.QueryRowContext(ctx, `
		SELECT total_revenue, total_expense, unpaid_liabilities,
		       monthly_fixed_cost, daily_sales_qty, cash_on_hand, initial_capital
		FROM business_finance
		WHERE business_id = ?
	`, businessID).Scan(
		&f.TotalRevenue,
		&f.TotalExpense,
		&f.UnpaidLiabilities,
		&f.MonthlyFixedCost,
		&f.DailySalesQty,
		&f.CashOnHand,
		&f.InitialCapital,
	)
	if err == sql.ErrNoRows {
		return f, nil
	}
	if err != nil {
		return Figures{}, fmt.Errorf("query business finance: %w", err)
	}
	return f, nil
}

// Put upserts a business's figures.
func (s *Store) Put(ctx context.Context, f Figures) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO business_finance (
			business_id, total_revenue, total_expense, unpaid_liabilities,
			monthly_fixed_cost, daily_sales_qty, cash_on_hand, initial_capital
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(business_id) DO UPDATE SET
			total_revenue = excluded.total_revenue,
			total_expense = excluded.total_expense,
			unpaid_liabilities = excluded.unpaid_liabilities,
			monthly_fixed_cost = excluded.monthly_fixed_cost,
			daily_sales_qty = excluded.daily_sales_qty,
			cash_on_hand = excluded.cash_on_hand,
			initial_capital = excluded.initial_capital,
			updated_at = CURRENT_TIMESTAMP
	`, f.BusinessID, f.TotalRevenue, f.TotalExpense, f.UnpaidLiabilities,
		f.MonthlyFixedCost, f.DailySalesQty, f.CashOnHand, f.InitialCapital)
	if err != nil {
		return fmt.Errorf("upsert business finance: %w", err)
	}
	return nil
}

// RecordSnapshot appends one health evaluation to the trend history.
func (s *Store) RecordSnapshot(ctx context.Context, businessID string, takenAt time.Time, r health.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_snapshots (business_id, taken_at, score, label, runway_days)
		VALUES (?, ?, ?, ?, ?)
	`, businessID, takenAt.UTC().Format(time.RFC3339), r.Score, string(r.Label), r.RunwayDays)
	if err != nil {
		return fmt.Errorf("insert health snapshot: %w", err)
	}
	return nil
}

// Snapshots returns a business's recorded evaluations, newest first.
func (s *Store) Snapshots(ctx context.Context, businessID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT business_id, taken_at, score, label, runway_days
		FROM health_snapshots
		WHERE business_id = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ?
	`, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("query health snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			snap    Snapshot
			takenAt string
		)
		if err := rows.Scan(&snap.BusinessID, &takenAt, &snap.Score, &snap.Label, &snap.RunwayDays); err != nil {
			return nil, fmt.Errorf("scan health snapshot: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, takenAt); err == nil {
			snap.TakenAt = t
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health snapshots: %w", err)
	}
	return snapshots, nil
}
