// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for all databases (resolved absolute)
	Port      int
	LogLevel  string
	LogPretty bool

	// CORS
	AllowedOrigins []string

	// Scheduler
	SchedulerEnabled    bool
	RecomputeSchedule   string // cron expression for nightly balance recompute
	MaintenanceSchedule string
	BackupSchedule      string

	// S3 backups
	Backup BackupConfig
}

// BackupConfig holds S3 backup settings. Endpoint is optional and allows
// S3-compatible stores.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Retention       int // number of archives to keep
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VARUNA_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		Port:      getEnvAsInt("VARUNA_PORT", 8080),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		AllowedOrigins: []string{getEnv("CORS_ORIGIN", "*")},

		SchedulerEnabled:    getEnvAsBool("SCHEDULER_ENABLED", true),
		RecomputeSchedule:   getEnv("RECOMPUTE_SCHEDULE", "0 0 2 * * *"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 15 * * * *"),
		BackupSchedule:      getEnv("BACKUP_SCHEDULE", "0 30 3 * * *"),

		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Retention:       getEnvAsInt("BACKUP_RETENTION", 7),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("backups enabled but BACKUP_S3_BUCKET is not set")
		}
		if c.Backup.Retention < 1 {
			return fmt.Errorf("backup retention must be at least 1, got %d", c.Backup.Retention)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
