package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/riskwatch/risk"
)

// Config represents the complete monitoring configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Thresholds ThresholdsConfig `json:"thresholds" yaml:"thresholds"`
	Scheduler  SchedulerConfig  `json:"scheduler" yaml:"scheduler"`
	Monitor    MonitorConfig    `json:"monitor" yaml:"monitor"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// ThresholdConfig is one configurable risk limit
type ThresholdConfig struct {
	Value      float64 `json:"value" yaml:"value"`
	AlertLevel string  `json:"alert_level,omitempty" yaml:"alert_level,omitempty"`
	Enabled    *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"` // nil means enabled
}

// ThresholdsConfig overrides the built-in default limits per type. Omitted
// entries keep their defaults.
type ThresholdsConfig map[string]ThresholdConfig

// SchedulerConfig contains batching parameters
type SchedulerConfig struct {
	MaxBatchSize   int `json:"max_batch_size,omitempty" yaml:"max_batch_size,omitempty"`
	BatchTimeoutMS int `json:"batch_timeout_ms,omitempty" yaml:"batch_timeout_ms,omitempty"`
}

// MonitorConfig contains polling parameters
type MonitorConfig struct {
	RefreshIntervalMS int     `json:"refresh_interval_ms,omitempty" yaml:"refresh_interval_ms,omitempty"`
	RiskPerTradePct   float64 `json:"risk_per_trade_pct,omitempty" yaml:"risk_per_trade_pct,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	AlertsFile string `json:"alerts_file,omitempty" yaml:"alerts_file,omitempty"`
	RisksFile  string `json:"risks_file,omitempty" yaml:"risks_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

var validThresholdTypes = map[string]risk.ThresholdType{
	"daily_loss":    risk.ThresholdDailyLoss,
	"drawdown":      risk.ThresholdDrawdown,
	"concentration": risk.ThresholdConcentration,
	"correlation":   risk.ThresholdCorrelation,
	"var":           risk.ThresholdVaR,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	for name, th := range c.Thresholds {
		if _, ok := validThresholdTypes[name]; !ok {
			return fmt.Errorf("unknown threshold type: %s", name)
		}
		if th.Value == 0 {
			return fmt.Errorf("thresholds.%s.value must be non-zero", name)
		}
		switch th.AlertLevel {
		case "", string(risk.LevelWarning), string(risk.LevelCritical):
		default:
			return fmt.Errorf("thresholds.%s.alert_level must be WARNING or CRITICAL", name)
		}
	}
	if c.Scheduler.MaxBatchSize < 0 {
		return fmt.Errorf("scheduler.max_batch_size must not be negative")
	}
	if c.Scheduler.BatchTimeoutMS < 0 {
		return fmt.Errorf("scheduler.batch_timeout_ms must not be negative")
	}
	if c.Monitor.RefreshIntervalMS < 0 {
		return fmt.Errorf("monitor.refresh_interval_ms must not be negative")
	}
	if c.Monitor.RiskPerTradePct < 0 || c.Monitor.RiskPerTradePct > 1 {
		return fmt.Errorf("monitor.risk_per_trade_pct must be between 0 and 1")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" && c.Journal.Type != "none" {
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if c.Journal.Type == "csv" && (c.Journal.AlertsFile == "" || c.Journal.RisksFile == "") {
		return fmt.Errorf("journal alerts_file and risks_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// RiskThresholds converts the config overrides into the evaluator's
// threshold set, starting from the built-in defaults.
func (c *Config) RiskThresholds() risk.Thresholds {
	out := risk.DefaultThresholds()
	for name, th := range c.Thresholds {
		typ, ok := validThresholdTypes[name]
		if !ok {
			continue
		}
		base := out[typ]
		base.Value = th.Value
		if th.AlertLevel != "" {
			base.AlertLevel = risk.AlertLevel(th.AlertLevel)
		}
		if th.Enabled != nil {
			base.Enabled = *th.Enabled
		}
		out[typ] = base
	}
	return out
}

// RefreshInterval returns the monitor poll interval, zero when unset so the
// monitor applies its own default.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Monitor.RefreshIntervalMS) * time.Millisecond
}

// BatchTimeout returns the scheduler debounce window, zero when unset.
func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.Scheduler.BatchTimeoutMS) * time.Millisecond
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  100000,
		},
		Thresholds: ThresholdsConfig{},
		Scheduler: SchedulerConfig{
			MaxBatchSize:   50,
			BatchTimeoutMS: 16,
		},
		Monitor: MonitorConfig{
			RefreshIntervalMS: 30000,
			RiskPerTradePct:   0.02,
		},
		Journal: JournalConfig{
			Type:       "csv",
			AlertsFile: "./alerts.csv",
			RisksFile:  "./risks.csv",
		},
	}
}
