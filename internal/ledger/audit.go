package ledger

import (
	"time"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"go.uber.org/zap"
)

// OutcomeState classifies a historical signal's realized path.
type OutcomeState string

const (
	OutcomeWin       OutcomeState = "WIN"
	OutcomeLoss      OutcomeState = "LOSS"
	OutcomeObserving OutcomeState = "OBSERVING"
)

// Evaluation is one audited ledger row.
type Evaluation struct {
	Record    core.Record
	State     OutcomeState
	Matured   bool    // signal older than the maturity horizon
	LastPrice float64 // settle price: stop when stopped out, else last close
	ReturnPct float64
}

// Stats aggregates evaluations. WinRate counts wins against resolved
// signals only; observing rows stay out of the denominator.
type Stats struct {
	Total     int
	Wins      int
	Losses    int
	Observing int
	WinRate   float64 // percent
	AvgReturn float64 // percent, over all evaluations
}

// SeriesProvider supplies an instrument's bar history for outcome
// replay. Implemented by the ingest loader.
type SeriesProvider interface {
	Series(code string) (*core.Series, error)
}

// Classify replays the bars after the record's signal date with
// first-touch semantics: the first bar whose low touches or breaches
// the stop settles the signal as a LOSS at the stop, even if the path
// recovers later. Otherwise the first close above entry is a WIN.
// Anything unresolved stays OBSERVING.
func Classify(rec core.Record, bars []core.Bar, now time.Time, horizonDays int) Evaluation {
	ev := Evaluation{
		Record:    rec,
		State:     OutcomeObserving,
		LastPrice: rec.Price,
	}

	if signalDate, err := time.Parse(DateLayout, rec.Date); err == nil {
		ev.Matured = now.Sub(signalDate) >= time.Duration(horizonDays)*24*time.Hour
	}

	entry, stop := rec.Price, rec.Stop
	if stop == 0 {
		// Legacy rows predate the stop column; assume a 7% stop.
		stop = entry * 0.93
	}

	for _, b := range bars {
		if b.Date.Format(DateLayout) <= rec.Date {
			continue
		}
		if b.Low <= stop {
			ev.State = OutcomeLoss
			ev.LastPrice = stop
			break
		}
		ev.LastPrice = b.Close
		if b.Close > entry {
			ev.State = OutcomeWin
			break
		}
	}

	if entry != 0 {
		ev.ReturnPct = (ev.LastPrice - entry) / entry * 100
	}
	return ev
}

// Summarize reduces evaluations to aggregate stats.
func Summarize(evals []Evaluation) Stats {
	st := Stats{Total: len(evals)}
	var retSum float64
	for _, ev := range evals {
		retSum += ev.ReturnPct
		switch ev.State {
		case OutcomeWin:
			st.Wins++
		case OutcomeLoss:
			st.Losses++
		default:
			st.Observing++
		}
	}
	if resolved := st.Wins + st.Losses; resolved > 0 {
		st.WinRate = float64(st.Wins) / float64(resolved) * 100
	}
	if st.Total > 0 {
		st.AvgReturn = retSum / float64(st.Total)
	}
	return st
}

// Auditor replays every ledger row against subsequent bars.
type Auditor struct {
	store  Store
	series SeriesProvider
	cfg    config.LedgerConfig
	logger *zap.Logger
}

// NewAuditor creates an Auditor.
func NewAuditor(store Store, series SeriesProvider, cfg config.LedgerConfig, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{store: store, series: series, cfg: cfg, logger: logger}
}

// Run evaluates all stored records. Rows whose bar history cannot be
// loaded are skipped with a warning; one bad instrument never aborts
// the audit.
func (a *Auditor) Run(now time.Time) ([]Evaluation, Stats, error) {
	records, err := a.store.All()
	if err != nil {
		return nil, Stats{}, core.WrapError(core.ErrLedgerRead, err)
	}

	var evals []Evaluation
	for _, rec := range records {
		s, err := a.series.Series(rec.Code)
		if err != nil {
			a.logger.Warn("skipping audit row, bars unavailable",
				zap.String("code", rec.Code),
				zap.Error(err),
			)
			continue
		}
		evals = append(evals, Classify(rec, s.Bars, now, a.cfg.HorizonDays))
	}

	stats := Summarize(evals)
	a.logger.Info("ledger audit complete",
		zap.Int("evaluated", stats.Total),
		zap.Float64("win_rate", stats.WinRate),
	)
	return evals, stats, nil
}
