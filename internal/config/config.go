package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/qjlxg/fe/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Capital CapitalConfig `mapstructure:"capital"`
	Screen  ScreenConfig  `mapstructure:"screen"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Regime  RegimeConfig  `mapstructure:"regime"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Report  ReportConfig  `mapstructure:"report"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Scan    ScanConfig    `mapstructure:"scan"`
}

// DataConfig locates the input bar files and the sector metadata list.
type DataConfig struct {
	Dir        string `mapstructure:"dir"`
	SectorFile string `mapstructure:"sector_file"`
}

// CapitalConfig holds the account-level sizing parameters.
type CapitalConfig struct {
	TotalCapital         float64 `mapstructure:"total_capital"`
	RiskFractionPerTrade float64 `mapstructure:"risk_fraction_per_trade"`
	SingleMaxWeight      float64 `mapstructure:"single_instrument_max_weight"`
	LotSize              int     `mapstructure:"lot_size"`
}

// ScreenConfig is the scoring profile. PeakWindow and MinBars vary
// between profiles (20/30 for the loose profile, 40/40 for the strict
// one); everything else is a gate threshold.
type ScreenConfig struct {
	LiquidityMinimum   float64 `mapstructure:"liquidity_minimum"`
	ScoreMinimum       int     `mapstructure:"score_minimum"`
	DrawdownThreshold  float64 `mapstructure:"drawdown_threshold"`
	PeakWindow         int     `mapstructure:"peak_window"`
	MinBars            int     `mapstructure:"min_bars"`
	RSIThreshold       float64 `mapstructure:"rsi_threshold"`
	BandProximity      float64 `mapstructure:"band_proximity"`
	AmountSpikeRatio   float64 `mapstructure:"amount_spike_ratio"`
	TurnoverSpikeRatio float64 `mapstructure:"turnover_spike_ratio"`
}

// RiskConfig holds the stop-loss and position-sizing parameters.
type RiskConfig struct {
	ATRMultiple        float64 `mapstructure:"atr_multiple"`
	HardStopFloor      float64 `mapstructure:"hard_stop_floor"`
	DefaultVolFraction float64 `mapstructure:"default_vol_fraction"`
}

// RegimeConfig names the benchmark instrument and its lookback.
type RegimeConfig struct {
	Benchmark string `mapstructure:"benchmark"`
	Lookback  int    `mapstructure:"regime_lookback"`
}

// LedgerConfig holds the history store path and audit parameters.
type LedgerConfig struct {
	Path           string `mapstructure:"path"`
	StreakLookback int    `mapstructure:"streak_lookback_days"`
	HorizonDays    int    `mapstructure:"horizon_days"`
}

// ReportConfig holds the markdown output paths.
type ReportConfig struct {
	Path           string `mapstructure:"path"`
	ValidationPath string `mapstructure:"validation_path"`
}

// ArchiveConfig configures snapshot archiving of ledger and reports.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig configures the batch-job metrics textfile.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ScanConfig holds scan-loop settings.
type ScanConfig struct {
	Workers int `mapstructure:"workers"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns the strict (V12) scoring profile.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Dir:        "fund_data",
			SectorFile: "etf_list.csv",
		},
		Capital: CapitalConfig{
			TotalCapital:         10000,
			RiskFractionPerTrade: 0.02,
			SingleMaxWeight:      0.25,
			LotSize:              100,
		},
		Screen: ScreenConfig{
			LiquidityMinimum:   50_000_000,
			ScoreMinimum:       4,
			DrawdownThreshold:  -0.04,
			PeakWindow:         40,
			MinBars:            40,
			RSIThreshold:       40,
			BandProximity:      1.05,
			AmountSpikeRatio:   1.1,
			TurnoverSpikeRatio: 1.3,
		},
		Risk: RiskConfig{
			ATRMultiple:        3.0,
			HardStopFloor:      0.07,
			DefaultVolFraction: 0.05,
		},
		Regime: RegimeConfig{
			Benchmark: "510300",
			Lookback:  20,
		},
		Ledger: LedgerConfig{
			Path:           "signal_history.csv",
			StreakLookback: 3,
			HorizonDays:    2,
		},
		Report: ReportConfig{
			Path:           "README.md",
			ValidationPath: "VALIDATION_REPORT.md",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "archive",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "fe_metrics.prom",
		},
		Scan: ScanConfig{
			Workers: 1,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Capital.TotalCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("total_capital must be positive, got %f", c.Capital.TotalCapital))
	}
	if c.Capital.RiskFractionPerTrade <= 0 || c.Capital.RiskFractionPerTrade >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_fraction_per_trade must be in (0,1), got %f", c.Capital.RiskFractionPerTrade))
	}
	if c.Capital.SingleMaxWeight <= 0 || c.Capital.SingleMaxWeight > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("single_instrument_max_weight must be in (0,1], got %f", c.Capital.SingleMaxWeight))
	}
	if c.Capital.LotSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lot_size must be at least 1, got %d", c.Capital.LotSize))
	}
	if c.Screen.ScoreMinimum < 1 || c.Screen.ScoreMinimum > 5 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("score_minimum must be in [1,5], got %d", c.Screen.ScoreMinimum))
	}
	if c.Screen.DrawdownThreshold >= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("drawdown_threshold must be negative, got %f", c.Screen.DrawdownThreshold))
	}
	if c.Screen.PeakWindow < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("peak_window must be at least 2, got %d", c.Screen.PeakWindow))
	}
	if c.Screen.MinBars < c.Screen.PeakWindow {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_bars %d below peak_window %d", c.Screen.MinBars, c.Screen.PeakWindow))
	}
	if c.Risk.ATRMultiple <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("atr_multiple must be positive, got %f", c.Risk.ATRMultiple))
	}
	if c.Risk.HardStopFloor <= 0 || c.Risk.HardStopFloor >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("hard_stop_floor must be in (0,1), got %f", c.Risk.HardStopFloor))
	}
	if c.Regime.Lookback < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("regime_lookback must be at least 2, got %d", c.Regime.Lookback))
	}
	if c.Ledger.Path == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("ledger path is required"))
	}
	if c.Scan.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scan workers must be at least 1, got %d", c.Scan.Workers))
	}
	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}
	return nil
}
