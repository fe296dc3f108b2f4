// Package screen turns an indicator-extended series into a scored
// signal candidate, or nothing.
package screen

import (
	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"github.com/qjlxg/fe/internal/indicator"
)

// ddEpsilon guards the peak denominator; the rolling peak includes the
// current close so it is never below it, but a zero-price series must
// not divide by zero.
const ddEpsilon = 1e-4

// Scorer evaluates the multi-factor checklist against the last two
// rows of an extended series.
type Scorer struct {
	cfg config.ScreenConfig
}

// NewScorer creates a Scorer with the given scoring profile.
func NewScorer(cfg config.ScreenConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns a candidate when the instrument clears the gates and
// the accumulated score reaches the configured minimum, or nil for no
// signal. Gates are ordered and short-circuit: liquidity first, then
// the base gate, then the four checklist points.
func (s *Scorer) Score(ext *indicator.Extended) *core.Candidate {
	if ext.Len() < s.cfg.MinBars {
		return nil
	}

	last := ext.Last()
	prev := ext.Prev()

	// Liquidity gate. Written to also reject NaN warm-up values.
	if !(last.AvgAmount >= s.cfg.LiquidityMinimum) {
		return nil
	}

	dd := (last.Close - last.Peak) / (last.Peak + ddEpsilon)

	score := 0
	// Base gate: above the short MA and pulled back from the peak.
	if last.Close > last.MA5 && dd < s.cfg.DrawdownThreshold {
		score = 1
		if last.MACDHist > prev.MACDHist {
			score++ // momentum improving
		}
		if last.RSI < s.cfg.RSIThreshold {
			score++ // oversold
		}
		if last.Close < last.LowerBand*s.cfg.BandProximity {
			score++ // near mean-reversion support
		}
		if last.Amount > last.AvgAmount*s.cfg.AmountSpikeRatio ||
			last.Turnover > last.AvgTurnover*s.cfg.TurnoverSpikeRatio {
			score++ // volume or turnover anomaly
		}
	}

	if score < s.cfg.ScoreMinimum {
		return nil
	}

	return &core.Candidate{
		Code:        ext.Series.Code,
		Score:       score,
		Price:       last.Close,
		ATR:         last.ATR,
		DrawdownPct: dd * 100,
		RSI:         last.RSI,
		AvgAmount:   last.AvgAmount,
		Turnover:    last.Turnover,
	}
}
