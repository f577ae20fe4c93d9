package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath           = "./dev.db"
	defaultPort             = "8080"
	defaultEnv              = "dev"
	defaultSnapshotSchedule = "0 6 * * *"
	defaultBusinessID       = "demo"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string
	AdminEmail       string
	AdminPassword    string
	SessionSecret    string
	DBPath           string
	Port             string
	AnthropicKey     string
	SnapshotSchedule string
	DefaultBusiness  string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// Production should use real env injection; a missing file is fine.
	_ = godotenv.Load()

	cfg := Config{
		Env:              getenvWithDefault("APP_ENV", defaultEnv),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		DBPath:           getenvWithDefault("DB_PATH", defaultDBPath),
		Port:             getenvWithDefault("PORT", defaultPort),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		SnapshotSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", defaultSnapshotSchedule),
		DefaultBusiness:  getenvWithDefault("DEFAULT_BUSINESS_ID", defaultBusinessID),
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in local development mode, where logs
// switch to human-readable console output.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
