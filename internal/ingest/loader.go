package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qjlxg/fe/internal/core"
	"go.uber.org/zap"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "20060102"}

// Loader reads per-instrument bar files named <code>.csv from a
// directory.
type Loader struct {
	dir      string
	resolver SchemaResolver
	logger   *zap.Logger
}

// NewLoader creates a Loader using the given schema-resolution
// strategy.
func NewLoader(dir string, resolver SchemaResolver, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, resolver: resolver, logger: logger}
}

// Codes lists the instrument codes present in the data directory.
func (l *Loader) Codes() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}

	var codes []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		if code := CodeFromFilename(e.Name()); code != "" {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

// Series loads, cleans and sorts one instrument's bars. Rows failing
// numeric coercion are dropped, not zero-filled; a missing turnover
// column degrades to zero for every bar.
func (l *Loader) Series(code string) (*core.Series, error) {
	path := filepath.Join(l.dir, code+".csv")

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrBadBarData, err)
	}
	if len(rows) < 2 {
		return nil, core.ErrNoData
	}

	cm, err := l.resolver.Resolve(rows[0])
	if err != nil {
		return nil, err
	}

	s := &core.Series{Code: code}
	dropped := 0
	for _, row := range rows[1:] {
		bar, ok := parseBar(row, cm)
		if !ok {
			dropped++
			continue
		}
		s.Bars = append(s.Bars, bar)
	}
	if dropped > 0 {
		l.logger.Debug("dropped unparseable bar rows",
			zap.String("code", code),
			zap.Int("dropped", dropped),
		)
	}
	if len(s.Bars) == 0 {
		return nil, core.ErrNoData
	}

	sort.SliceStable(s.Bars, func(i, j int) bool { return s.Bars[i].Date.Before(s.Bars[j].Date) })

	// Enforce strictly increasing dates: keep the first row per day.
	uniq := s.Bars[:1]
	for _, b := range s.Bars[1:] {
		if b.Date.After(uniq[len(uniq)-1].Date) {
			uniq = append(uniq, b)
		}
	}
	s.Bars = uniq

	return s, nil
}

func parseBar(row []string, cm ColumnMap) (core.Bar, bool) {
	get := func(idx int) (float64, bool) {
		if idx < 0 || idx >= len(row) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil || v < 0 {
			return 0, false
		}
		return v, true
	}

	if cm.Date >= len(row) {
		return core.Bar{}, false
	}
	date, ok := parseDate(row[cm.Date])
	if !ok {
		return core.Bar{}, false
	}

	bar := core.Bar{Date: date}
	if bar.High, ok = get(cm.High); !ok {
		return core.Bar{}, false
	}
	if bar.Low, ok = get(cm.Low); !ok {
		return core.Bar{}, false
	}
	if bar.Close, ok = get(cm.Close); !ok {
		return core.Bar{}, false
	}
	if bar.Amount, ok = get(cm.Amount); !ok {
		return core.Bar{}, false
	}

	// Open defaults to the close when the column is absent.
	if cm.Open >= 0 {
		if bar.Open, ok = get(cm.Open); !ok {
			return core.Bar{}, false
		}
	} else {
		bar.Open = bar.Close
	}

	// Turnover degrades to zero rather than dropping the row.
	if cm.Turnover >= 0 {
		if v, ok := get(cm.Turnover); ok {
			bar.Turnover = v
		}
	}

	return bar, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CodeFromFilename extracts the digits of a bar filename and pads them
// to six places, so "sh510300.csv" and "510300.csv" agree.
func CodeFromFilename(name string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSuffix(name, ".csv") {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	code := digits.String()
	if code == "" {
		return ""
	}
	for len(code) < 6 {
		code = "0" + code
	}
	return code
}
