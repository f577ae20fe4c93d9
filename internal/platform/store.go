// Package platform persists the admin-editable marketplace fee schedules.
package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/untunglab/juragan/internal/pricing"
)

// ErrNotFound is returned when a platform code does not exist.
var ErrNotFound = errors.New("platform config not found")

// Store persists platform fee schedules keyed by code.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns fee schedules, optionally filtered by category, ordered by
// code. Inactive platforms are included; callers filter when simulating.
func (s *Store) List(ctx context.Context, category string) ([]pricing.PlatformConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, commission, fixed_fee, withdrawal_fee, category, active
		FROM platform_configs
		WHERE (? = '' OR category = ?)
		ORDER BY code ASC
	`, category, category)
	if err != nil {
		return nil, fmt.Errorf("query platform configs: %w", err)
	}
	defer rows.Close()

	configs := make([]pricing.PlatformConfig, 0)
	for rows.Next() {
		var p pricing.PlatformConfig
		if err := rows.Scan(&p.Code, &p.Name, &p.Commission, &p.FixedFee, &p.WithdrawalFee, &p.Category, &p.Active); err != nil {
			return nil, fmt.Errorf("scan platform config: %w", err)
		}
		configs = append(configs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platform configs: %w", err)
	}
	return configs, nil
}

// ListActive returns only the platforms that should enter a simulation.
func (s *Store) ListActive(ctx context.Context) ([]pricing.PlatformConfig, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// Get fetches one fee schedule by code.
func (s *Store) Get(ctx context.Context, code string) (pricing.PlatformConfig, error) {
	var p pricing.PlatformConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, commission, fixed_fee, withdrawal_fee, category, active
		FROM platform_configs
		WHERE code = ?
	`, code).Scan(&p.Code, &p.Name, &p.Commission, &p.FixedFee, &p.WithdrawalFee, &p.Category, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.PlatformConfig{}, ErrNotFound
	}
	if err != nil {
		return pricing.PlatformConfig{}, fmt.Errorf("query platform config: %w", err)
	}
	return p, nil
}

// Create inserts a new fee schedule.
func (s *Store) Create(ctx context.Context, p pricing.PlatformConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO platform_configs (code, name, commission, fixed_fee, withdrawal_fee, category, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Code, p.Name, p.Commission, p.FixedFee, p.WithdrawalFee, p.Category, p.Active)
	if err != nil {
		return fmt.Errorf("insert platform config: %w", err)
	}
	return nil
}

// Update rewrites a fee schedule.
func (s *Store) Update(ctx context.Context, p pricing.PlatformConfig) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE platform_configs
		SET
			name = ?,
			commission = ?,
			fixed_fee = ?,
			withdrawal_fee = ?,
			category = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE code = ?
	`, p.Name, p.Commission, p.FixedFee, p.WithdrawalFee, p.Category, p.Active, p.Code)
	if err != nil {
		return fmt.Errorf("update platform config: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update platform config: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a fee schedule.
func (s *Store) Delete(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM platform_configs WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete platform config: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete platform config: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
