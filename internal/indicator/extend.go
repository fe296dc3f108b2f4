package indicator

import (
	"math"

	"github.com/qjlxg/fe/internal/core"
)

const (
	atrPeriod  = 14
	rsiPeriod  = 14
	bollPeriod = 20
	amountMA   = 5

	// rsiEpsilon keeps the loss denominator away from zero on
	// monotonically rising series.
	rsiEpsilon = 1e-5
)

// Extended is an instrument series with derived indicator columns,
// aligned index-for-index with the input bars. Warm-up rows hold NaN;
// the series-length precondition in the scan layer guarantees the last
// two rows are always defined.
type Extended struct {
	Series core.Series

	MA5         []float64
	MA10        []float64
	MA20        []float64
	ATR         []float64
	RSI         []float64
	MACDHist    []float64
	LowerBand   []float64
	Peak        []float64
	AvgAmount   []float64
	AvgTurnover []float64
}

// Snapshot is one row of an Extended series, flattened to scalars for
// the scorer's "today vs. yesterday" comparisons.
type Snapshot struct {
	Close    float64
	High     float64
	Low      float64
	Amount   float64
	Turnover float64

	MA5         float64
	MA10        float64
	MA20        float64
	ATR         float64
	RSI         float64
	MACDHist    float64
	LowerBand   float64
	Peak        float64
	AvgAmount   float64
	AvgTurnover float64
}

// Extend computes all indicator columns for the series. peakWindow is
// the rolling-peak lookback (a scoring-profile parameter, typically 20
// or 40). Pure transform: the input series is not modified.
func Extend(s core.Series, peakWindow int) *Extended {
	closes := s.Closes()
	amounts := make([]float64, len(s.Bars))
	turnovers := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		amounts[i] = b.Amount
		turnovers[i] = b.Turnover
	}

	ext := &Extended{
		Series:      s,
		MA5:         RollingMean(closes, 5),
		MA10:        RollingMean(closes, 10),
		MA20:        RollingMean(closes, bollPeriod),
		ATR:         averageTrueRange(s.Bars),
		RSI:         relativeStrength(closes),
		MACDHist:    macdHistogram(closes),
		Peak:        RollingMax(closes, peakWindow),
		AvgAmount:   RollingMean(amounts, amountMA),
		AvgTurnover: RollingMean(turnovers, amountMA),
	}

	// Bollinger lower band = MA20 - 2*stdev20.
	std := RollingStd(closes, bollPeriod)
	ext.LowerBand = make([]float64, len(closes))
	for i := range closes {
		ext.LowerBand[i] = ext.MA20[i] - 2*std[i]
	}

	return ext
}

// Len returns the number of rows.
func (e *Extended) Len() int { return len(e.Series.Bars) }

// Row flattens row i into a Snapshot.
func (e *Extended) Row(i int) Snapshot {
	b := e.Series.Bars[i]
	return Snapshot{
		Close:       b.Close,
		High:        b.High,
		Low:         b.Low,
		Amount:      b.Amount,
		Turnover:    b.Turnover,
		MA5:         e.MA5[i],
		MA10:        e.MA10[i],
		MA20:        e.MA20[i],
		ATR:         e.ATR[i],
		RSI:         e.RSI[i],
		MACDHist:    e.MACDHist[i],
		LowerBand:   e.LowerBand[i],
		Peak:        e.Peak[i],
		AvgAmount:   e.AvgAmount[i],
		AvgTurnover: e.AvgTurnover[i],
	}
}

// Last returns the final row.
func (e *Extended) Last() Snapshot { return e.Row(e.Len() - 1) }

// Prev returns the next-to-last row.
func (e *Extended) Prev() Snapshot { return e.Row(e.Len() - 2) }

// averageTrueRange computes the 14-bar rolling mean of the true range:
// max(high-low, |high-prior close|, |low-prior close|). The first bar
// has no prior close and uses high-low alone.
func averageTrueRange(bars []core.Bar) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		rng := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			if d := math.Abs(b.High - prev); d > rng {
				rng = d
			}
			if d := math.Abs(b.Low - prev); d > rng {
				rng = d
			}
		}
		tr[i] = rng
	}
	return RollingMean(tr, atrPeriod)
}

// relativeStrength computes a 14-bar RSI from rolling average gain and
// average loss, with an epsilon on the loss denominator.
func relativeStrength(closes []float64) []float64 {
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := RollingMean(gains, rsiPeriod)
	avgLoss := RollingMean(losses, rsiPeriod)

	rsi := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(avgGain[i]) {
			continue
		}
		rs := avgGain[i] / (avgLoss[i] + rsiEpsilon)
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}

// macdHistogram computes (EMA12 - EMA26) - EMA9 of that difference.
// EWMA has no warm-up gap, so the histogram is defined from row 0;
// early values are unreliable and never read before warm-up anyway.
func macdHistogram(closes []float64) []float64 {
	if len(closes) == 0 {
		return []float64{}
	}
	ema12 := EWMA(closes, 12)
	ema26 := EWMA(closes, 26)

	diff := make([]float64, len(closes))
	for i := range closes {
		diff[i] = ema12[i] - ema26[i]
	}

	signal := EWMA(diff, 9)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = diff[i] - signal[i]
	}
	return hist
}
