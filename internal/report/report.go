// Package report renders the markdown dashboards: the daily signal
// board and the win-rate validation report.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"github.com/qjlxg/fe/internal/ledger"
	"github.com/qjlxg/fe/internal/regime"
)

const timeLayout = "2006-01-02 15:04"

// Renderer writes the markdown outputs to the configured paths.
type Renderer struct {
	cfg    config.ReportConfig
	logger *zap.Logger
}

// New creates a Renderer.
func New(cfg config.ReportConfig, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{cfg: cfg, logger: logger}
}

// WriteDashboard renders and writes the daily board. The page layout
// depends on the cycle outcome: a defensive page when the regime gate
// is UNSAFE, an empty-day page when no candidates survived, otherwise
// the full allocation table.
func (r *Renderer) WriteDashboard(now time.Time, st regime.Status, allocs []core.Allocation) error {
	var body string
	switch {
	case !st.Safe():
		body = RiskOffPage(now, st)
	case len(allocs) == 0:
		body = NoSignalsPage(now)
	default:
		body = DashboardPage(now, allocs)
	}

	if err := os.WriteFile(r.cfg.Path, []byte(body), 0644); err != nil {
		return fmt.Errorf("writing dashboard %s: %w", r.cfg.Path, err)
	}
	r.logger.Info("dashboard written",
		zap.String("path", r.cfg.Path),
		zap.String("regime", string(st.State)),
		zap.Int("allocations", len(allocs)),
	)
	return nil
}

// WriteValidation renders and writes the win-rate audit report.
func (r *Renderer) WriteValidation(now time.Time, evals []ledger.Evaluation, stats ledger.Stats) error {
	body := ValidationPage(now, evals, stats)
	if err := os.WriteFile(r.cfg.ValidationPath, []byte(body), 0644); err != nil {
		return fmt.Errorf("writing validation report %s: %w", r.cfg.ValidationPath, err)
	}
	r.logger.Info("validation report written",
		zap.String("path", r.cfg.ValidationPath),
		zap.Int("signals", stats.Total),
	)
	return nil
}

// RiskOffPage is the defensive page shown while the benchmark trades
// below its moving average and all entries are blocked.
func RiskOffPage(now time.Time, st regime.Status) string {
	var sb strings.Builder
	sb.WriteString("# 🛰️ 全维度复盘看板 - 🛑 强行空仓模式\n\n")
	sb.WriteString(fmt.Sprintf("更新: `%s`\n\n", now.Format(timeLayout)))
	sb.WriteString("### 🚨 系统预警：大盘风控已开启\n")
	sb.WriteString(fmt.Sprintf("目前大盘处于20日线下方的弱势下降通道（收盘 `%.3f` < 均线 `%.3f`）。", st.Close, st.MA))
	sb.WriteString("根据量化风控原则，此时全市场信号失效概率极大，系统已**自动拦截**所有买入建议以保护初始资金。\n")
	return sb.String()
}

// NoSignalsPage is the empty-day page.
func NoSignalsPage(now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# 🛰️ 全维度复盘看板\n\n")
	sb.WriteString(fmt.Sprintf("更新: `%s`\n\n", now.Format(timeLayout)))
	sb.WriteString("😴 今日无高分信号\n")
	return sb.String()
}

// DashboardPage renders the allocation table in the caller's order.
// The total position line sums the per-allocation capital shares.
func DashboardPage(now time.Time, allocs []core.Allocation) string {
	var used float64
	for _, a := range allocs {
		used += a.PositionPct
	}

	var sb strings.Builder
	sb.WriteString("# 🛰️ 全维度复盘看板\n\n")
	sb.WriteString(fmt.Sprintf("更新: `%s`\n\n", now.Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("> **当前总仓位**: `%.1f%%` | **入选标的**: `%d 只`\n\n", used, len(allocs)))
	sb.WriteString("> **策略增强**: 20日线大盘风控 | 3.0xATR止损 | 行业去重 | 资金保护模式\n\n")
	sb.WriteString("| 标签 | 代码 | 简称 | 板块 | 得分 | 建议买入 | 预计占用 | 止损位 | 现价 | RSI | 换手率 | 回撤 | 均额(万) |\n")
	sb.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, a := range allocs {
		tag := "⭐"
		if a.IsStreak {
			tag = "🔄"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | **%s** | `%s` | %s | **%d 手** | %.1f%% | %.3f | %.3f | %.1f | %.2f%% | %.1f%% | %d |\n",
			tag, a.Code, a.Name, a.Sector, strings.Repeat("🔥", a.Score),
			a.FinalLots, a.PositionPct, a.Stop, a.Price, a.RSI,
			a.Turnover, a.DrawdownPct, int(a.AvgAmount/10000)))
	}
	return sb.String()
}

// ValidationPage renders the audit report: aggregate stats, then one
// row per ledger signal, newest first.
func ValidationPage(now time.Time, evals []ledger.Evaluation, stats ledger.Stats) string {
	sorted := make([]ledger.Evaluation, len(evals))
	copy(sorted, evals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Record.Date != sorted[j].Record.Date {
			return sorted[i].Record.Date > sorted[j].Record.Date
		}
		return sorted[i].Record.Code < sorted[j].Record.Code
	})

	var sb strings.Builder
	sb.WriteString("# 🔍 信号实战校验报告\n\n")
	sb.WriteString(fmt.Sprintf("更新时间: `%s`\n\n", now.Format(timeLayout)))
	sb.WriteString("### 📊 总体战绩统计\n")
	sb.WriteString(fmt.Sprintf("- 累计信号: `%d` | 盈利: `%d` | 止损: `%d` | 观察中: `%d` | 胜率: `%.2f%%` | 平均收益: `%.2f%%`\n\n",
		stats.Total, stats.Wins, stats.Losses, stats.Observing, stats.WinRate, stats.AvgReturn))
	sb.WriteString("### 📝 详细信号列表\n")
	sb.WriteString("| 信号日期 | 代码 | 名称 | 入场价 | 止损价 | 现价/结算 | 收益% | 状态 |\n")
	sb.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, ev := range sorted {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.3f | %.3f | %.3f | %.2f%% | %s |\n",
			ev.Record.Date, ev.Record.Code, ev.Record.Name,
			ev.Record.Price, ev.Record.Stop, ev.LastPrice, ev.ReturnPct,
			stateLabel(ev.State)))
	}
	return sb.String()
}

func stateLabel(s ledger.OutcomeState) string {
	switch s {
	case ledger.OutcomeWin:
		return "✅ 盈利中"
	case ledger.OutcomeLoss:
		return "❌ 已止损"
	default:
		return "⏳ 观察中"
	}
}
