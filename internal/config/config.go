package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers for the snapshot slot.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

type Config struct {
	StorageDriver string
	DBPath        string
	SnapshotPath  string
	SlotName      string
	LogLevel      string
	LogFormat     string
	Timezone      string
	HistoryDays   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the CLI still starts when .env is absent.
	_ = godotenv.Load()

	return Config{
		StorageDriver: strings.ToLower(envOr("STORAGE_DRIVER", DriverSQLite)),
		DBPath:        envOr("DB_PATH", "file:flashstudy.db"),
		SnapshotPath:  envOr("SNAPSHOT_PATH", "flashstudy.json"),
		SlotName:      envOr("SLOT_NAME", "flashcard-app-storage"),
		LogLevel:      envOr("LOG_LEVEL", "WARN"),
		LogFormat:     envOr("LOG_FORMAT", "text"),
		Timezone:      envOr("TIMEZONE", "Local"),
		HistoryDays:   envIntOr("HISTORY_DAYS", 14),
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when STORAGE_DRIVER=%s", DriverSQLite)
		}
	case DriverFile:
		if c.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH cannot be empty when STORAGE_DRIVER=%s", DriverFile)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverFile, c.StorageDriver)
	}
	if strings.TrimSpace(c.SlotName) == "" {
		return fmt.Errorf("SLOT_NAME cannot be empty")
	}
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Timezone, err)
	}
	if c.HistoryDays < 1 || c.HistoryDays > 366 {
		return fmt.Errorf("HISTORY_DAYS must be between 1 and 366, got %d", c.HistoryDays)
	}
	return nil
}

// Location resolves Timezone; empty and "Local" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
