package core

import "time"

// RegimeState is the market-wide gate state, recomputed fresh each cycle.
type RegimeState string

const (
	RegimeSafe   RegimeState = "SAFE"
	RegimeUnsafe RegimeState = "UNSAFE"
)

// Bar represents one daily OHLCV row for one instrument.
// Amount is the traded amount in currency; Turnover is the turnover
// rate in percent and stays 0 when the source has no such column.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Amount   float64
	Turnover float64
}

// Series is the ordered bar history for one instrument code.
// Dates are strictly increasing.
type Series struct {
	Code string
	Bars []Bar
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// SectorInfo maps an instrument code to its display name and the
// sector/tracked-index label used for portfolio deduplication.
type SectorInfo struct {
	Name   string
	Sector string
}

// Candidate is a qualifying signal for one instrument within one run.
// Name and Sector are attached by the scan loop from the metadata
// collaborator; Stop and TheoryInvest by the risk sizer.
type Candidate struct {
	Code         string
	Name         string
	Sector       string
	Score        int
	Price        float64
	ATR          float64 // NaN when warm-up was insufficient
	Stop         float64
	TheoryInvest float64
	DrawdownPct  float64 // percent, <= 0
	RSI          float64
	AvgAmount    float64
	Turnover     float64
}

// Allocation is a candidate that survived sector dedup and capital
// scaling, rounded to whole lots.
type Allocation struct {
	Candidate
	FinalLots   int
	PositionPct float64 // percent of total capital
	IsStreak    bool
}

// Record is one persisted history row, keyed by (Date, Code).
type Record struct {
	Date        string // YYYY-MM-DD
	Code        string
	Name        string
	Sector      string
	Price       float64
	Stop        float64
	RSI         float64
	DrawdownPct float64
	Score       int
	Lots        int
	PositionPct float64
	Turnover    float64
}

// Key returns the dedup key for the record.
func (r Record) Key() string { return r.Date + "|" + r.Code }

// Outcome is the typed result of one instrument's scan pipeline.
// Candidate is nil when the instrument produced no signal; Err is set
// when processing failed and the instrument was excluded from the pool.
type Outcome struct {
	Code      string
	Candidate *Candidate
	Err       error
}
