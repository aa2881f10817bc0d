package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/platewise/platewise/internal/costwatch/domain"
	"go.uber.org/zap"
)

func entriesFromCosts(costs ...float64) []domain.CostEntry {
	recorded := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	out := make([]domain.CostEntry, 0, len(costs))
	for i, cost := range costs {
		out = append(out, domain.CostEntry{
			ID:         fmt.Sprintf("entry-%d", i),
			Cost:       cost,
			RecordedAt: recorded.AddDate(0, 0, -i),
		})
	}
	return out
}

func TestDetectFlagsSpikeAboveTolerance(t *testing.T) {
	d := New(Params{Log: zap.NewNop()})

	flagged := d.Detect(entriesFromCosts(130, 100, 100, 100, 100, 100, 100))

	if len(flagged) != 1 || flagged[0] != "entry-0" {
		t.Fatalf("expected only the spike flagged, got %v", flagged)
	}
}

func TestDetectWithinToleranceBand(t *testing.T) {
	d := New(Params{Log: zap.NewNop()})

	// 103 is inside the 5% band over a 100 average.
	if flagged := d.Detect(entriesFromCosts(103, 100, 100)); len(flagged) != 0 {
		t.Fatalf("expected nothing flagged inside the band, got %v", flagged)
	}
	// 105 exactly is not above the band.
	if flagged := d.Detect(entriesFromCosts(105, 100, 100)); len(flagged) != 0 {
		t.Fatalf("expected the band edge unflagged, got %v", flagged)
	}
	if flagged := d.Detect(entriesFromCosts(106, 100, 100)); len(flagged) != 1 {
		t.Fatalf("expected just past the band flagged, got %v", flagged)
	}
}

func TestDetectNeedsHistory(t *testing.T) {
	d := New(Params{Log: zap.NewNop()})

	if flagged := d.Detect(nil); flagged != nil {
		t.Fatalf("expected nil for no entries, got %v", flagged)
	}
	if flagged := d.Detect(entriesFromCosts(250)); flagged != nil {
		t.Fatalf("expected nil for a single entry, got %v", flagged)
	}
}

func TestDetectIgnoresNonPositiveCosts(t *testing.T) {
	d := New(Params{Log: zap.NewNop()})

	entries := entriesFromCosts(130, 0, -5, 100, 100)
	flagged := d.Detect(entries)
	if len(flagged) != 1 || flagged[0] != "entry-0" {
		t.Fatalf("expected zero-cost entries excluded from the average, got %v", flagged)
	}

	// A lone positive entry among junk has no trailing history.
	if flagged := d.Detect(entriesFromCosts(0, 130, -1)); flagged != nil {
		t.Fatalf("expected nil without two positive entries, got %v", flagged)
	}
}

func TestDetectWindowCapsTrailingAverage(t *testing.T) {
	d := New(Params{Log: zap.NewNop()})

	// Six recent entries at 100 fill the window; the very old 1000 must not
	// drag the average up.
	entries := entriesFromCosts(110, 100, 100, 100, 100, 100, 100, 1000)
	flagged := d.Detect(entries)

	found := false
	for _, id := range flagged {
		if id == "entry-0" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected entry-0 flagged against the windowed average, got %v", flagged)
	}
}
