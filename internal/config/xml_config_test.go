package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATA_DIR", "LOG_LEVEL", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "PHISNET.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, time.Second, cfg.MaxStartDelay())
	assert.Equal(t, int64(100*1024*1024), cfg.Simulation.MaxFileSizeBytes)
	assert.Equal(t, 5*time.Second, cfg.DashboardInterval())
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
	assert.Equal(t, "0.0.0.0:8089", cfg.GetServerAddr())
}

func TestLoadConfig_RoundTripAndPartialFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "PHISNET.config")

	partial := `<?xml version="1.0" encoding="UTF-8"?>
<PHISNET>
  <Server><Port>9000</Port><BindAddress>127.0.0.1</BindAddress></Server>
  <Simulation><TickIntervalMs>50</TickIntervalMs><MaxFileSizeBytes>1024</MaxFileSizeBytes><FailureRatePercent>10</FailureRatePercent></Simulation>
  <Advanced><CatalogPath>catalog.yaml</CatalogPath></Advanced>
</PHISNET>`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, int64(1024), cfg.Simulation.MaxFileSizeBytes)
	assert.Equal(t, 10, cfg.Simulation.FailureRatePercent)
	assert.Equal(t, filepath.Join(dir, "catalog.yaml"), cfg.Advanced.CatalogPath)
	// Sections missing from the file keep their defaults.
	assert.Equal(t, 1000, cfg.Simulation.MaxStartDelayMs)
	assert.Equal(t, "phisnet:completions", cfg.Notifications.Queue)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "elsewhere")
	t.Setenv("PORT", "7070")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig(filepath.Join(dir, "PHISNET.config"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, dataDir, cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dataDir, "uploads"), cfg.GetUploadDir())
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, "redis:6379", cfg.Notifications.RedisAddr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed", "<PHISNET><Server>"},
		{"zero tick", "<PHISNET><Simulation><TickIntervalMs>0</TickIntervalMs></Simulation></PHISNET>"},
		{"failure rate", "<PHISNET><Simulation><FailureRatePercent>150</FailureRatePercent></Simulation></PHISNET>"},
		{"bad port", "<PHISNET><Server><Port>70000</Port></Server></PHISNET>"},
		{"bad log format", "<PHISNET><Advanced><LogFormat>xml</LogFormat></Advanced></PHISNET>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "PHISNET.config")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "PHISNET.config"))
	require.NoError(t, err)

	require.NoError(t, cfg.EnsureDirectories())
	info, err := os.Stat(cfg.GetUploadDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
