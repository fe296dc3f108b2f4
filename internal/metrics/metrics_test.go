package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegistry_RecordInstrument(t *testing.T) {
	reg := NewRegistry()

	reg.RecordInstrument("signal")
	reg.RecordInstrument("nosignal")
	reg.RecordInstrument("nosignal")
	reg.RecordInstrument("error")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() != "fe_scan_instruments_total" {
			continue
		}
		found = true
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) == 1 && m.GetLabel()[0].GetValue() == "nosignal" {
				if got := m.GetCounter().GetValue(); got != 2 {
					t.Errorf("nosignal count = %v, want 2", got)
				}
			}
		}
	}
	if !found {
		t.Error("expected fe_scan_instruments_total metric")
	}
}

func TestRegistry_SetRegime(t *testing.T) {
	reg := NewRegistry()
	reg.SetRegime(false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "fe_regime_safe" {
			if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 0 {
				t.Errorf("fe_regime_safe = %v, want 0", got)
			}
			return
		}
	}
	t.Error("expected fe_regime_safe metric")
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.SetCandidates(7)
	reg.SetAllocations(3)
	reg.SetLedgerWritten(3)
	reg.RecordCycle(1.25, 1717500000)

	path := filepath.Join(t.TempDir(), "fe_metrics.prom")
	if err := reg.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"fe_scan_candidates 7",
		"fe_scan_allocations 3",
		"fe_cycle_duration_seconds 1.25",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
