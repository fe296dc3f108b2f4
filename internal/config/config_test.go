package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
data:
  dir: "bars"
  sector_file: "sectors.csv"

capital:
  total_capital: 50000
  risk_fraction_per_trade: 0.01
  single_instrument_max_weight: 0.3
  lot_size: 100

screen:
  peak_window: 20
  min_bars: 30
  score_minimum: 3
  drawdown_threshold: -0.05
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Capital.TotalCapital != 50000 {
		t.Errorf("expected total_capital 50000, got %f", cfg.Capital.TotalCapital)
	}

	if cfg.Screen.PeakWindow != 20 {
		t.Errorf("expected peak_window 20, got %d", cfg.Screen.PeakWindow)
	}

	if cfg.Data.Dir != "bars" {
		t.Errorf("expected data dir bars, got %s", cfg.Data.Dir)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Capital.TotalCapital != 10000 {
		t.Errorf("expected default total_capital 10000, got %f", cfg.Capital.TotalCapital)
	}
	if cfg.Screen.ScoreMinimum != 4 {
		t.Errorf("expected default score_minimum 4, got %d", cfg.Screen.ScoreMinimum)
	}
	if cfg.Risk.ATRMultiple != 3.0 {
		t.Errorf("expected default atr_multiple 3.0, got %f", cfg.Risk.ATRMultiple)
	}
	if cfg.Regime.Benchmark != "510300" {
		t.Errorf("expected default benchmark 510300, got %s", cfg.Regime.Benchmark)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero capital", func(c *Config) { c.Capital.TotalCapital = 0 }, true},
		{"risk fraction too high", func(c *Config) { c.Capital.RiskFractionPerTrade = 1.5 }, true},
		{"max weight above 1", func(c *Config) { c.Capital.SingleMaxWeight = 1.2 }, true},
		{"positive drawdown threshold", func(c *Config) { c.Screen.DrawdownThreshold = 0.04 }, true},
		{"score minimum out of range", func(c *Config) { c.Screen.ScoreMinimum = 6 }, true},
		{"min_bars below peak_window", func(c *Config) { c.Screen.MinBars = 10 }, true},
		{"hard floor at zero", func(c *Config) { c.Risk.HardStopFloor = 0 }, true},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, true},
		{"s3 archive without bucket", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Type = "s3"
		}, true},
		{"localfs archive ok", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Type = "localfs"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
