package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashstudy/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		StorageDriver: config.DriverSQLite,
		DBPath:        "file:test.db",
		SnapshotPath:  "test.json",
		SlotName:      "flashcard-app-storage",
		LogLevel:      "INFO",
		LogFormat:     "text",
		Timezone:      "UTC",
		HistoryDays:   14,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_FileDriver(t *testing.T) {
	cfg := validConfig()
	cfg.StorageDriver = config.DriverFile
	cfg.DBPath = ""
	assert.NoError(t, cfg.Validate())

	cfg.SnapshotPath = ""
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_PATH cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.StorageDriver = "postgres"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty slot name", func(c *config.Config) { c.SlotName = "  " }, "SLOT_NAME"},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"misspelled log level", func(c *config.Config) { c.LogLevel = "WARNN" }, "LOG_LEVEL"},
		{"empty log level", func(c *config.Config) { c.LogLevel = "" }, "LOG_LEVEL"},
		{"bad timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"zero history days", func(c *config.Config) { c.HistoryDays = 0 }, "HISTORY_DAYS"},
		{"too many history days", func(c *config.Config) { c.HistoryDays = 400 }, "HISTORY_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Local"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STORAGE_DRIVER", "DB_PATH", "SNAPSHOT_PATH", "SLOT_NAME", "LOG_LEVEL", "LOG_FORMAT", "TIMEZONE", "HISTORY_DAYS"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	assert.Equal(t, config.DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "file:flashstudy.db", cfg.DBPath)
	assert.Equal(t, "flashcard-app-storage", cfg.SlotName)
	assert.Equal(t, 14, cfg.HistoryDays)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "FILE")
	t.Setenv("SNAPSHOT_PATH", "/tmp/cards.json")
	t.Setenv("HISTORY_DAYS", "not-a-number")

	cfg := config.Load()
	assert.Equal(t, config.DriverFile, cfg.StorageDriver)
	assert.Equal(t, "/tmp/cards.json", cfg.SnapshotPath)
	assert.Equal(t, 14, cfg.HistoryDays)
}
