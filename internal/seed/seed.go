// Package seed ensures the baseline records every fresh install needs: the
// admin user, the default marketplace fee schedules, and a demo business.
package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/untunglab/juragan/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail      string
	AdminPassword   string
	DefaultBusiness string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Commission figures reflect the publicly listed Indonesian marketplace
// rates at the time of writing; admins adjust them from the console.
var defaultPlatforms = []pricing.PlatformConfig{
	{Code: "gofood", Name: "GoFood", Commission: 0.20, FixedFee: 0, WithdrawalFee: 0, Category: "food", Active: true},
	{Code: "grabfood", Name: "GrabFood", Commission: 0.30, FixedFee: 0, WithdrawalFee: 0, Category: "food", Active: true},
	{Code: "shopeefood", Name: "ShopeeFood", Commission: 0.20, FixedFee: 0, WithdrawalFee: 2500, Category: "food", Active: true},
	{Code: "tokopedia", Name: "Tokopedia", Commission: 0.065, FixedFee: 1250, WithdrawalFee: 0, Category: "marketplace", Active: true},
	{Code: "offline", Name: "Penjualan Langsung", Commission: 0, FixedFee: 0, WithdrawalFee: 0, Category: "offline", Active: true},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensurePlatforms(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureBusiness(tx, cfg.DefaultBusiness, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensurePlatforms(tx *sql.Tx, stats *Stats) error {
	for _, p := range defaultPlatforms {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM platform_configs WHERE code = ? LIMIT 1)`, p.Code).Scan(&exists); err != nil {
			return fmt.Errorf("check platform %s existence: %w", p.Code, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO platform_configs (code, name, commission, fixed_fee, withdrawal_fee, category, active)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.Code, p.Name, p.Commission, p.FixedFee, p.WithdrawalFee, p.Category, p.Active); err != nil {
			return fmt.Errorf("insert platform %s: %w", p.Code, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureBusiness(tx *sql.Tx, id string, stats *Stats) error {
	if id == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM businesses WHERE id = ? LIMIT 1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check default business existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO businesses (id, name) VALUES (?, ?)`, id, "Usaha Saya"); err != nil {
		return fmt.Errorf("insert default business: %w", err)
	}
	stats.Inserts++
	return nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
