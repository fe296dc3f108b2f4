// Package risk computes volatility-based stops and capital-constrained
// position sizes for qualifying candidates.
package risk

import (
	"math"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
)

// riskEpsilon floors the per-share risk denominator.
const riskEpsilon = 1e-3

// Sizer attaches stop price and theoretical investment to candidates.
// Pure arithmetic with guarded denominators; it cannot fail.
type Sizer struct {
	capital config.CapitalConfig
	risk    config.RiskConfig
}

// NewSizer creates a Sizer from the capital and risk parameters.
func NewSizer(capital config.CapitalConfig, risk config.RiskConfig) *Sizer {
	return &Sizer{capital: capital, risk: risk}
}

// Size fills c.Stop and c.TheoryInvest in place.
//
// Stop is the tighter of an ATR distance and the hard floor:
// min(price - k*ATR, price*(1 - hard_floor)). When ATR is undefined
// the volatility estimate falls back to price*default_vol_fraction.
// Theoretical investment risks a fixed fraction of total capital per
// trade and is capped at the single-instrument maximum weight.
func (s *Sizer) Size(c *core.Candidate) {
	atr := c.ATR
	if math.IsNaN(atr) || atr <= 0 {
		atr = c.Price * s.risk.DefaultVolFraction
	}

	stop := c.Price - s.risk.ATRMultiple*atr
	if floor := c.Price * (1 - s.risk.HardStopFloor); floor < stop {
		stop = floor
	}
	c.Stop = stop

	riskMoney := s.capital.TotalCapital * s.capital.RiskFractionPerTrade
	perShare := c.Price - c.Stop
	if perShare < riskEpsilon {
		perShare = riskEpsilon
	}

	invest := riskMoney / perShare
	if maxInvest := s.capital.TotalCapital * s.capital.SingleMaxWeight; invest > maxInvest {
		invest = maxInvest
	}
	c.TheoryInvest = invest
}
