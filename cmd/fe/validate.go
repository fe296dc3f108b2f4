package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qjlxg/fe/internal/logger"
	"github.com/qjlxg/fe/internal/scan"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit past signals against realized prices",
	Long: `Replays every ledger row against the bars recorded after its signal
date, classifies each as win, stop-out or still observing, and writes
the validation report.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	runner, err := scan.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building runner: %w", err)
	}

	stats, err := runner.Validate(time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("✅ 校验完成: 信号 %d | 盈利 %d | 止损 %d | 观察中 %d | 胜率 %.2f%%\n",
		stats.Total, stats.Wins, stats.Losses, stats.Observing, stats.WinRate)
	fmt.Printf("报告: %s\n", cfg.Report.ValidationPath)
	return nil
}
