package regime

import (
	"testing"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"github.com/stretchr/testify/assert"
)

func benchSeries(closes []float64) *core.Series {
	s := &core.Series{Code: "510300"}
	for _, c := range closes {
		s.Bars = append(s.Bars, core.Bar{Close: c, High: c, Low: c})
	}
	return s
}

func gateCfg() config.RegimeConfig {
	return config.RegimeConfig{Benchmark: "510300", Lookback: 20}
}

func TestGate_Unsafe(t *testing.T) {
	// 24 flat closes at 4.0, then a slide: latest close well below MA20.
	closes := make([]float64, 0, 25)
	for i := 0; i < 20; i++ {
		closes = append(closes, 4.0)
	}
	closes = append(closes, 3.9, 3.8, 3.7, 3.6, 3.5)

	st := NewGate(gateCfg(), nil).Evaluate(benchSeries(closes))
	assert.Equal(t, core.RegimeUnsafe, st.State)
	assert.False(t, st.Safe())
	assert.Less(t, st.Close, st.MA)
}

func TestGate_Safe(t *testing.T) {
	// Rising closes: latest above its 20-bar average.
	closes := make([]float64, 0, 25)
	for i := 0; i < 25; i++ {
		closes = append(closes, 4.0+float64(i)*0.01)
	}

	st := NewGate(gateCfg(), nil).Evaluate(benchSeries(closes))
	assert.Equal(t, core.RegimeSafe, st.State)
	assert.True(t, st.Safe())
}

func TestGate_FailsOpenWithoutBenchmark(t *testing.T) {
	g := NewGate(gateCfg(), nil)

	st := g.Evaluate(nil)
	assert.Equal(t, core.RegimeSafe, st.State, "missing benchmark fails open")

	st = g.Evaluate(benchSeries([]float64{4.0, 4.1}))
	assert.Equal(t, core.RegimeSafe, st.State, "short benchmark fails open")
}

func TestGate_ExactlyAtMA(t *testing.T) {
	// Flat series: close equals MA, which is not below it.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 4.0
	}

	st := NewGate(gateCfg(), nil).Evaluate(benchSeries(closes))
	assert.Equal(t, core.RegimeSafe, st.State)
}
