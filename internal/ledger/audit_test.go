package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/qjlxg/fe/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathBars(start time.Time, rows [][3]float64) []core.Bar {
	// rows are {high, low, close} per day after start.
	bars := make([]core.Bar, 0, len(rows))
	for i, r := range rows {
		bars = append(bars, core.Bar{
			Date:  start.AddDate(0, 0, i+1),
			High:  r[0],
			Low:   r[1],
			Close: r[2],
		})
	}
	return bars
}

func TestClassify_FirstTouchLoss(t *testing.T) {
	signal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rec := core.Record{Date: "2024-06-03", Code: "510100", Price: 10.0, Stop: 9.1}

	// Dips through the stop on day two, then recovers well above entry.
	bars := pathBars(signal, [][3]float64{
		{10.1, 9.8, 9.9},
		{9.9, 9.0, 9.8}, // low 9.0 <= stop 9.1
		{10.8, 10.2, 10.7},
	})

	ev := Classify(rec, bars, signal.AddDate(0, 0, 10), 2)
	assert.Equal(t, OutcomeLoss, ev.State, "stop triggers at first breach even if the path recovers")
	assert.InDelta(t, 9.1, ev.LastPrice, 1e-9, "settles at the stop")
	assert.InDelta(t, -9.0, ev.ReturnPct, 1e-9)
	assert.True(t, ev.Matured)
}

func TestClassify_WinBeforeStop(t *testing.T) {
	signal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rec := core.Record{Date: "2024-06-03", Code: "510100", Price: 10.0, Stop: 9.1}

	bars := pathBars(signal, [][3]float64{
		{10.1, 9.8, 9.9},
		{10.4, 9.9, 10.3}, // closes above entry first
		{9.2, 8.8, 9.0},   // later breach is irrelevant
	})

	ev := Classify(rec, bars, signal.AddDate(0, 0, 10), 2)
	assert.Equal(t, OutcomeWin, ev.State)
	assert.InDelta(t, 10.3, ev.LastPrice, 1e-9)
	assert.InDelta(t, 3.0, ev.ReturnPct, 1e-9)
}

func TestClassify_SameBarStopWins(t *testing.T) {
	signal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rec := core.Record{Date: "2024-06-03", Code: "510100", Price: 10.0, Stop: 9.1}

	// One violent bar that both breaches the stop and closes above
	// entry: the stop is assumed to fire first.
	bars := pathBars(signal, [][3]float64{
		{10.5, 9.0, 10.2},
	})

	ev := Classify(rec, bars, signal.AddDate(0, 0, 10), 2)
	assert.Equal(t, OutcomeLoss, ev.State)
}

func TestClassify_Observing(t *testing.T) {
	signal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rec := core.Record{Date: "2024-06-03", Code: "510100", Price: 10.0, Stop: 9.1}

	// Drifts below entry without touching the stop.
	bars := pathBars(signal, [][3]float64{
		{10.0, 9.6, 9.8},
		{9.8, 9.5, 9.6},
	})

	ev := Classify(rec, bars, signal.AddDate(0, 0, 1), 2)
	assert.Equal(t, OutcomeObserving, ev.State)
	assert.False(t, ev.Matured)
	assert.InDelta(t, 9.6, ev.LastPrice, 1e-9)
}

func TestClassify_NoBarsAfterSignal(t *testing.T) {
	rec := core.Record{Date: "2024-06-03", Code: "510100", Price: 10.0, Stop: 9.1}

	ev := Classify(rec, nil, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), 2)
	assert.Equal(t, OutcomeObserving, ev.State)
	assert.Equal(t, 10.0, ev.LastPrice)
	assert.Equal(t, 0.0, ev.ReturnPct)
}

func TestClassify_MissingStopFallback(t *testing.T) {
	signal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rec := core.Record{Date: "2024-06-03", Code: "510100", Price: 10.0, Stop: 0}

	// Fallback stop is 9.3; a dip to 9.25 triggers it.
	bars := pathBars(signal, [][3]float64{
		{9.9, 9.25, 9.5},
	})

	ev := Classify(rec, bars, signal.AddDate(0, 0, 10), 2)
	assert.Equal(t, OutcomeLoss, ev.State)
	assert.InDelta(t, 9.3, ev.LastPrice, 1e-9)
}

func TestSummarize(t *testing.T) {
	evals := []Evaluation{
		{State: OutcomeWin, ReturnPct: 3.0},
		{State: OutcomeWin, ReturnPct: 5.0},
		{State: OutcomeLoss, ReturnPct: -9.0},
		{State: OutcomeObserving, ReturnPct: 1.0},
	}

	st := Summarize(evals)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Wins)
	assert.Equal(t, 1, st.Losses)
	assert.Equal(t, 1, st.Observing)
	assert.InDelta(t, 66.67, st.WinRate, 0.01, "observing rows stay out of the denominator")
	assert.InDelta(t, 0.0, st.AvgReturn, 1e-9)
}

type fakeSeries map[string][]core.Bar

func (f fakeSeries) Series(code string) (*core.Series, error) {
	bars, ok := f[code]
	if !ok {
		return nil, core.ErrNoData
	}
	return &core.Series{Code: code, Bars: bars}, nil
}

func TestAuditor_SkipsMissingInstruments(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "history.csv"))
	_, err := store.Append([]core.Record{
		sampleRecord("2024-06-03", "510100"),
		sampleRecord("2024-06-03", "599999"), // no bars available
	})
	require.NoError(t, err)

	signal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	provider := fakeSeries{
		"510100": pathBars(signal, [][3]float64{{1.30, 1.24, 1.28}}),
	}

	evals, stats, err := NewAuditor(store, provider, ledgerCfg(), nil).Run(signal.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, evals, 1, "missing bars skip the row, not the audit")
	assert.Equal(t, OutcomeWin, evals[0].State)
	assert.Equal(t, 1, stats.Wins)
}
