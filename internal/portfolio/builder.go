// Package portfolio pools qualifying candidates into a deduplicated,
// capital-scaled allocation list rounded to tradable lots.
package portfolio

import (
	"sort"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"go.uber.org/zap"
)

// scaleEpsilon guards the scale-factor denominator when the summed
// theoretical investment is zero.
const scaleEpsilon = 1e-3

// scalingPasses is fixed at two: dropping a zero-lot candidate frees
// capital, and one refinement pass redistributes it to the survivors.
const scalingPasses = 2

// Builder converts the run's candidate pool into final allocations.
type Builder struct {
	capital config.CapitalConfig
	logger  *zap.Logger
}

// NewBuilder creates a Builder with the given capital parameters.
func NewBuilder(capital config.CapitalConfig, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{capital: capital, logger: logger}
}

// Build deduplicates candidates per sector, scales the surviving
// theoretical investments to fit total capital, floors to whole lots
// and discards zero-lot entries. The result is sorted for the report:
// score desc, deepest drawdown first, average amount desc.
func (b *Builder) Build(candidates []core.Candidate) []core.Allocation {
	if len(candidates) == 0 {
		return nil
	}

	picked := b.dedupBySector(candidates)

	lots := make([]int, len(picked))
	for pass := 0; pass < scalingPasses; pass++ {
		var totalNeeded float64
		for _, c := range picked {
			totalNeeded += c.TheoryInvest
		}

		scale := b.capital.TotalCapital / (totalNeeded + scaleEpsilon)
		if scale > 1.0 {
			scale = 1.0
		}

		for i := range picked {
			lots[i] = 0
			if picked[i].Price > 0 {
				lots[i] = int(picked[i].TheoryInvest * scale / picked[i].Price / float64(b.capital.LotSize))
			}
			if lots[i] < 1 {
				// Freed capital tightens the scale factor next pass.
				picked[i].TheoryInvest = 0
			}
		}
	}

	var allocs []core.Allocation
	for i, c := range picked {
		if lots[i] < 1 {
			continue
		}
		allocs = append(allocs, core.Allocation{
			Candidate:   c,
			FinalLots:   lots[i],
			PositionPct: float64(lots[i]*b.capital.LotSize) * c.Price / b.capital.TotalCapital * 100,
		})
	}

	sort.Slice(allocs, func(i, j int) bool {
		if allocs[i].Score != allocs[j].Score {
			return allocs[i].Score > allocs[j].Score
		}
		if allocs[i].DrawdownPct != allocs[j].DrawdownPct {
			return allocs[i].DrawdownPct < allocs[j].DrawdownPct
		}
		return allocs[i].AvgAmount > allocs[j].AvgAmount
	})

	b.logger.Info("portfolio built",
		zap.Int("candidates", len(candidates)),
		zap.Int("after_dedup", len(picked)),
		zap.Int("allocations", len(allocs)),
	)
	return allocs
}

// dedupBySector keeps exactly one candidate per sector label: highest
// score, then deepest drawdown, then highest average amount, then
// lowest code so ties never resolve arbitrarily.
func (b *Builder) dedupBySector(candidates []core.Candidate) []core.Candidate {
	sorted := make([]core.Candidate, len(candidates))
	copy(sorted, candidates)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Sector != sorted[j].Sector {
			return sorted[i].Sector < sorted[j].Sector
		}
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if sorted[i].DrawdownPct != sorted[j].DrawdownPct {
			return sorted[i].DrawdownPct < sorted[j].DrawdownPct
		}
		if sorted[i].AvgAmount != sorted[j].AvgAmount {
			return sorted[i].AvgAmount > sorted[j].AvgAmount
		}
		return sorted[i].Code < sorted[j].Code
	})

	var picked []core.Candidate
	for i, c := range sorted {
		if i == 0 || c.Sector != sorted[i-1].Sector {
			picked = append(picked, c)
		}
	}
	return picked
}
