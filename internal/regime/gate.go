// Package regime implements the benchmark-driven market gate that can
// suppress all new entries for a cycle.
package regime

import (
	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"github.com/qjlxg/fe/internal/indicator"
	"go.uber.org/zap"
)

// Status is the gate outcome for one cycle, with the inputs kept for
// the report banner.
type Status struct {
	State core.RegimeState
	Close float64
	MA    float64
}

// Safe reports whether new entries are allowed.
func (s Status) Safe() bool { return s.State == core.RegimeSafe }

// Gate compares the benchmark's latest close to its moving average.
// Stateless: re-evaluated fresh every run.
type Gate struct {
	cfg    config.RegimeConfig
	logger *zap.Logger
}

// NewGate creates a Gate for the configured benchmark.
func NewGate(cfg config.RegimeConfig, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{cfg: cfg, logger: logger}
}

// Evaluate returns UNSAFE when the benchmark closed below its
// moving average. A missing or too-short benchmark series fails open:
// availability is preferred over false negatives, so the gate reports
// SAFE and logs a warning instead of blocking the run.
func (g *Gate) Evaluate(bench *core.Series) Status {
	if bench == nil || bench.Len() < g.cfg.Lookback {
		g.logger.Warn("benchmark unavailable, regime gate failing open",
			zap.String("benchmark", g.cfg.Benchmark),
			zap.Int("lookback", g.cfg.Lookback),
		)
		return Status{State: core.RegimeSafe}
	}

	closes := bench.Closes()
	ma := indicator.SMA(closes, g.cfg.Lookback)

	st := Status{
		State: core.RegimeSafe,
		Close: closes[len(closes)-1],
		MA:    ma[len(ma)-1],
	}
	if st.Close < st.MA {
		st.State = core.RegimeUnsafe
	}

	g.logger.Info("regime gate evaluated",
		zap.String("benchmark", g.cfg.Benchmark),
		zap.String("state", string(st.State)),
		zap.Float64("close", st.Close),
		zap.Float64("ma", st.MA),
	)
	return st
}
