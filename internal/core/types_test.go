// internal/core/types_test.go
package core

import (
	"testing"
	"time"
)

func TestSeries_Closes(t *testing.T) {
	s := Series{
		Code: "510500",
		Bars: []Bar{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 1.1},
			{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 1.2},
			{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Close: 1.3},
		},
	}

	closes := s.Closes()
	if len(closes) != 3 {
		t.Fatalf("expected 3 closes, got %d", len(closes))
	}
	if closes[0] != 1.1 || closes[2] != 1.3 {
		t.Errorf("unexpected closes: %v", closes)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestRecord_Key(t *testing.T) {
	r := Record{Date: "2024-06-03", Code: "159915"}
	if r.Key() != "2024-06-03|159915" {
		t.Errorf("unexpected key: %s", r.Key())
	}
}
