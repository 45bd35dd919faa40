package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskwatch/risk"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Default()
	cfg.Account.ID = "ACC-42"
	cfg.Thresholds = ThresholdsConfig{
		"daily_loss": {Value: 2500, AlertLevel: "CRITICAL"},
	}

	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, "ACC-42", got.Account.ID, name)
		assert.InDelta(t, 2500.0, got.Thresholds["daily_loss"].Value, 1e-9, name)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not yaml or json"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing id", func(c *Config) { c.Account.ID = "" }, "account.id"},
		{"zero balance", func(c *Config) { c.Account.Balance = 0 }, "account.balance"},
		{"unknown threshold", func(c *Config) {
			c.Thresholds = ThresholdsConfig{"margin": {Value: 1}}
		}, "unknown threshold"},
		{"bad alert level", func(c *Config) {
			c.Thresholds = ThresholdsConfig{"var": {Value: 0.1, AlertLevel: "PANIC"}}
		}, "alert_level"},
		{"bad journal type", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type"},
		{"csv without files", func(c *Config) {
			c.Journal = JournalConfig{Type: "csv"}
		}, "alerts_file"},
		{"sqlite without path", func(c *Config) {
			c.Journal = JournalConfig{Type: "sqlite"}
		}, "db_path"},
		{"risk pct out of range", func(c *Config) { c.Monitor.RiskPerTradePct = 1.5 }, "risk_per_trade_pct"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRiskThresholdsOverridesDefaults(t *testing.T) {
	t.Parallel()

	off := false
	cfg := Default()
	cfg.Thresholds = ThresholdsConfig{
		"daily_loss": {Value: 2500},
		"var":        {Value: 0.08, Enabled: &off},
	}

	ths := cfg.RiskThresholds()
	assert.InDelta(t, 2500.0, ths[risk.ThresholdDailyLoss].Value, 1e-9)
	assert.True(t, ths[risk.ThresholdDailyLoss].Enabled)
	assert.False(t, ths[risk.ThresholdVaR].Enabled)
	// Untouched types keep their defaults.
	assert.InDelta(t, 0.10, ths[risk.ThresholdDrawdown].Value, 1e-9)
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval())
	assert.Equal(t, 16*time.Millisecond, cfg.BatchTimeout())
}
