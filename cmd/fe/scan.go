package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/logger"
	"github.com/qjlxg/fe/internal/scan"
)

var scanDate string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one screening cycle",
	Long: `Runs the full pipeline once: benchmark regime gate, universe scan,
sector dedup, capital scaling, ledger append, dashboard render.
A cycle with no surviving signals exits 0.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanDate, "date", "", "run date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(scanCmd)
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func resolveDate() (time.Time, error) {
	if scanDate == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", scanDate)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	now, err := resolveDate()
	if err != nil {
		return fmt.Errorf("parsing --date: %w", err)
	}

	runner, err := scan.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building runner: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := runner.Run(ctx, now)
	if err != nil {
		return err
	}

	switch {
	case !res.Regime.Safe():
		fmt.Println("🚨 大盘环境不佳，已执行防御性空仓。")
	case len(res.Allocations) == 0:
		fmt.Println("😴 今日无符合条件的信号")
	default:
		fmt.Printf("✅ %d 只入选，看板已更新: %s\n", len(res.Allocations), cfg.Report.Path)
	}
	return nil
}
