// Package ledger persists accepted allocations to an append-only
// history store and computes streaks and realized outcomes over it.
package ledger

import (
	"time"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"go.uber.org/zap"
)

// DateLayout is the ledger's date format.
const DateLayout = "2006-01-02"

// Store is the append-only history record store. Append deduplicates
// on (date, code): re-running the same day must not duplicate rows.
// Retention is a collaborator concern, not part of this contract.
type Store interface {
	// Append persists the records, skipping keys already stored.
	// Returns the number of records actually written.
	Append(records []core.Record) (int, error)

	// All returns every stored record in insertion order.
	All() ([]core.Record, error)
}

// Ledger wraps a Store with the streak lookup used when tagging
// allocations.
type Ledger struct {
	store  Store
	cfg    config.LedgerConfig
	logger *zap.Logger
}

// New creates a Ledger over the given store.
func New(store Store, cfg config.LedgerConfig, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, cfg: cfg, logger: logger}
}

// Record appends the allocations for the given run date and returns
// them with streak flags set, plus the number of rows actually
// written after dedup. Streaks are detected against the store state
// before the append, so today's own rows never count.
func (l *Ledger) Record(date time.Time, allocs []core.Allocation) ([]core.Allocation, int, error) {
	existing, err := l.store.All()
	if err != nil {
		return nil, 0, core.WrapError(core.ErrLedgerRead, err)
	}

	day := date.Format(DateLayout)
	from := date.AddDate(0, 0, -l.cfg.StreakLookback).Format(DateLayout)

	recent := make(map[string]struct{})
	for _, r := range existing {
		if r.Date >= from && r.Date < day {
			recent[r.Code] = struct{}{}
		}
	}

	records := make([]core.Record, 0, len(allocs))
	for i := range allocs {
		_, allocs[i].IsStreak = recent[allocs[i].Code]
		records = append(records, toRecord(day, allocs[i]))
	}

	written, err := l.store.Append(records)
	if err != nil {
		return nil, 0, core.WrapError(core.ErrLedgerWrite, err)
	}
	l.logger.Info("history ledger updated",
		zap.String("date", day),
		zap.Int("accepted", len(records)),
		zap.Int("written", written),
	)
	return allocs, written, nil
}

func toRecord(day string, a core.Allocation) core.Record {
	return core.Record{
		Date:        day,
		Code:        a.Code,
		Name:        a.Name,
		Sector:      a.Sector,
		Price:       a.Price,
		Stop:        a.Stop,
		RSI:         a.RSI,
		DrawdownPct: a.DrawdownPct,
		Score:       a.Score,
		Lots:        a.FinalLots,
		PositionPct: a.PositionPct,
		Turnover:    a.Turnover,
	}
}
