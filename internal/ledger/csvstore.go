package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qjlxg/fe/internal/core"
)

var csvHeader = []string{
	"date", "code", "name", "sector", "price", "stop", "rsi",
	"dd", "score", "lots", "pos_pct", "turnover",
}

// CSVStore is a file-backed Store. One writer per run; rows are only
// ever appended, never rewritten.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore creates a store at the given path. The file is created
// lazily on first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// All reads every record. A missing file is an empty ledger, not an
// error. Rows that fail numeric coercion are dropped.
func (s *CSVStore) All() ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Append writes the records not already present by (date, code) key.
func (s *CSVStore) Append(records []core.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.Key()] = struct{}{}
	}

	fresh := records[:0:0]
	for _, r := range records {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	newFile := false
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		newFile = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return 0, err
		}
	}
	for _, r := range fresh {
		if err := w.Write(toRow(r)); err != nil {
			return 0, err
		}
	}
	w.Flush()
	return len(fresh), w.Error()
}

func (s *CSVStore) readAll() ([]core.Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	var records []core.Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == "date" {
			continue // header
		}
		rec, ok := fromRow(row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRow(r core.Record) []string {
	return []string{
		r.Date,
		r.Code,
		r.Name,
		r.Sector,
		strconv.FormatFloat(r.Price, 'f', 3, 64),
		strconv.FormatFloat(r.Stop, 'f', 3, 64),
		strconv.FormatFloat(r.RSI, 'f', 1, 64),
		strconv.FormatFloat(r.DrawdownPct, 'f', 1, 64),
		strconv.Itoa(r.Score),
		strconv.Itoa(r.Lots),
		strconv.FormatFloat(r.PositionPct, 'f', 1, 64),
		strconv.FormatFloat(r.Turnover, 'f', 2, 64),
	}
}

func fromRow(row []string) (core.Record, bool) {
	if len(row) < 12 {
		return core.Record{}, false
	}

	rec := core.Record{
		Date:   row[0],
		Code:   row[1],
		Name:   row[2],
		Sector: row[3],
	}

	floats := []struct {
		src string
		dst *float64
	}{
		{row[4], &rec.Price},
		{row[5], &rec.Stop},
		{row[6], &rec.RSI},
		{row[7], &rec.DrawdownPct},
		{row[10], &rec.PositionPct},
		{row[11], &rec.Turnover},
	}
	for _, fl := range floats {
		v, err := strconv.ParseFloat(fl.src, 64)
		if err != nil {
			return core.Record{}, false
		}
		*fl.dst = v
	}

	var err error
	if rec.Score, err = strconv.Atoi(row[8]); err != nil {
		return core.Record{}, false
	}
	if rec.Lots, err = strconv.Atoi(row[9]); err != nil {
		return core.Record{}, false
	}
	return rec, true
}
