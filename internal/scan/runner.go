// Package scan is the cycle orchestrator: regime gate, universe scan,
// portfolio construction, ledger append and output rendering.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qjlxg/fe/internal/config"
	"github.com/qjlxg/fe/internal/core"
	"github.com/qjlxg/fe/internal/indicator"
	"github.com/qjlxg/fe/internal/ingest"
	"github.com/qjlxg/fe/internal/ledger"
	"github.com/qjlxg/fe/internal/metrics"
	"github.com/qjlxg/fe/internal/portfolio"
	"github.com/qjlxg/fe/internal/regime"
	"github.com/qjlxg/fe/internal/report"
	"github.com/qjlxg/fe/internal/risk"
	"github.com/qjlxg/fe/internal/screen"
	"github.com/qjlxg/fe/internal/storage/archive"
)

// BarSource supplies the instrument universe and per-code histories.
// Implemented by the ingest loader.
type BarSource interface {
	Codes() ([]string, error)
	Series(code string) (*core.Series, error)
}

// Runner wires the whole pipeline together for one cycle.
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	bars     BarSource
	sectors  ingest.SectorMap
	store    ledger.Store
	gate     *regime.Gate
	scorer   *screen.Scorer
	sizer    *risk.Sizer
	builder  *portfolio.Builder
	ledger   *ledger.Ledger
	renderer *report.Renderer
	registry *metrics.Registry
	snap     *archive.Snapshotter
}

// New builds a Runner with the default collaborators: CSV bar loader,
// CSV ledger store, and the configured archive backend when enabled.
func New(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := ingest.NewLoader(cfg.Data.Dir, ingest.KeywordResolver{}, logger)
	sectors := ingest.LoadSectors(cfg.Data.SectorFile, logger)
	store := ledger.NewCSVStore(cfg.Ledger.Path)

	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		bars:     loader,
		sectors:  sectors,
		store:    store,
		gate:     regime.NewGate(cfg.Regime, logger),
		scorer:   screen.NewScorer(cfg.Screen),
		sizer:    risk.NewSizer(cfg.Capital, cfg.Risk),
		builder:  portfolio.NewBuilder(cfg.Capital, logger),
		ledger:   ledger.New(store, cfg.Ledger, logger),
		renderer: report.New(cfg.Report, logger),
		registry: metrics.NewRegistry(),
	}

	if cfg.Archive.Enabled {
		st, err := archive.Open(cfg.Archive)
		if err != nil {
			return nil, err
		}
		r.snap = archive.NewSnapshotter(st, logger)
	}
	return r, nil
}

// Result summarizes one completed cycle.
type Result struct {
	RunID       string
	Regime      regime.Status
	Scanned     int
	Errors      int
	Candidates  int
	Allocations []core.Allocation
	Written     int
	Duration    time.Duration
}

// Run executes one screening cycle for the given run date. A cycle
// with zero surviving candidates is a normal result, not an error.
func (r *Runner) Run(ctx context.Context, now time.Time) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))

	res := &Result{RunID: runID}

	var bench *core.Series
	if s, err := r.bars.Series(r.cfg.Regime.Benchmark); err != nil {
		log.Warn("benchmark series unavailable",
			zap.String("benchmark", r.cfg.Regime.Benchmark),
			zap.Error(core.WrapError(core.ErrBenchmarkMissing, err)),
		)
	} else {
		bench = s
	}
	res.Regime = r.gate.Evaluate(bench)
	r.registry.SetRegime(res.Regime.Safe())

	if !res.Regime.Safe() {
		log.Warn("regime gate blocked the cycle, holding cash")
		if err := r.renderer.WriteDashboard(now, res.Regime, nil); err != nil {
			return nil, err
		}
		return r.finish(ctx, now, res, start, log)
	}

	codes, err := r.bars.Codes()
	if err != nil {
		return nil, err
	}
	universe := codes[:0:0]
	for _, c := range codes {
		if c != r.cfg.Regime.Benchmark {
			universe = append(universe, c)
		}
	}

	outcomes := r.scanUniverse(ctx, universe)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []core.Candidate
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			res.Errors++
			r.registry.RecordInstrument("error")
			log.Warn("instrument skipped", zap.String("code", o.Code), zap.Error(o.Err))
		case o.Candidate != nil:
			candidates = append(candidates, *o.Candidate)
			r.registry.RecordInstrument("signal")
		default:
			r.registry.RecordInstrument("nosignal")
		}
	}
	res.Scanned = len(outcomes)
	res.Candidates = len(candidates)
	r.registry.SetCandidates(len(candidates))

	allocs := r.builder.Build(candidates)
	if len(allocs) > 0 {
		allocs, res.Written, err = r.ledger.Record(now, allocs)
		if err != nil {
			return nil, err
		}
	}
	res.Allocations = allocs
	r.registry.SetAllocations(len(allocs))
	r.registry.SetLedgerWritten(res.Written)

	if err := r.renderer.WriteDashboard(now, res.Regime, allocs); err != nil {
		return nil, err
	}

	return r.finish(ctx, now, res, start, log)
}

// finish flushes metrics, archives artifacts and stamps the duration.
// Shared by the normal and the risk-off exits.
func (r *Runner) finish(ctx context.Context, now time.Time, res *Result, start time.Time, log *zap.Logger) (*Result, error) {
	res.Duration = time.Since(start)
	r.registry.RecordCycle(res.Duration.Seconds(), float64(time.Now().Unix()))

	if r.cfg.Metrics.Enabled {
		if err := r.registry.WriteTextfile(r.cfg.Metrics.Path); err != nil {
			log.Error("metrics textfile write failed", zap.Error(err))
		}
	}
	if r.snap != nil {
		day := now.Format(ledger.DateLayout)
		files := []string{r.cfg.Ledger.Path, r.cfg.Report.Path}
		if err := r.snap.Snapshot(ctx, day, files); err != nil {
			log.Error("archive snapshot failed", zap.Error(err))
		}
	}

	log.Info("cycle complete",
		zap.String("regime", string(res.Regime.State)),
		zap.Int("scanned", res.Scanned),
		zap.Int("errors", res.Errors),
		zap.Int("candidates", res.Candidates),
		zap.Int("allocations", len(res.Allocations)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// scanUniverse fans the codes out over the configured worker count.
// Order of the returned outcomes is unspecified; the portfolio builder
// re-sorts deterministically.
func (r *Runner) scanUniverse(ctx context.Context, codes []string) []core.Outcome {
	workers := r.cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan core.Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				results <- r.scanOne(code)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, code := range codes {
			select {
			case <-ctx.Done():
				return
			case jobs <- code:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []core.Outcome
	for o := range results {
		out = append(out, o)
	}
	return out
}

// scanOne runs the per-instrument pipeline: load, extend, score, size.
func (r *Runner) scanOne(code string) core.Outcome {
	s, err := r.bars.Series(code)
	if err != nil {
		return core.Outcome{Code: code, Err: err}
	}

	ext := indicator.Extend(*s, r.cfg.Screen.PeakWindow)
	cand := r.scorer.Score(ext)
	if cand == nil {
		return core.Outcome{Code: code}
	}

	info := r.sectors.Lookup(code)
	cand.Name = info.Name
	cand.Sector = info.Sector
	r.sizer.Size(cand)

	return core.Outcome{Code: code, Candidate: cand}
}

// Validate replays the ledger against subsequent bars and writes the
// validation report.
func (r *Runner) Validate(now time.Time) (ledger.Stats, error) {
	auditor := ledger.NewAuditor(r.store, r.bars, r.cfg.Ledger, r.logger)
	evals, stats, err := auditor.Run(now)
	if err != nil {
		return ledger.Stats{}, err
	}
	if err := r.renderer.WriteValidation(now, evals, stats); err != nil {
		return ledger.Stats{}, err
	}
	return stats, nil
}
