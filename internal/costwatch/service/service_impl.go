package service

import (
	"github.com/platewise/platewise/internal/costwatch/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// toleranceBand is the hardcoded 5% band above the trailing average.
	toleranceBand = 1.05
	// windowSize caps how many older entries feed each trailing average.
	windowSize = 6
	minEntries = 2
)

type Params struct {
	fx.In

	Log *zap.Logger
}

// Detector flags cost entries that sit above the trailing average of older
// entries for the same item. Presence in the returned set is the entire
// signal; there is no severity or magnitude grading.
type Detector struct {
	log *zap.Logger
}

func New(p Params) *Detector {
	return &Detector{log: p.Log.Named("costwatch")}
}

// Detect expects entries ordered most-recent-first with positive costs and
// returns the ids of flagged entries.
func (d *Detector) Detect(entries []domain.CostEntry) []string {
	positive := 0
	for _, e := range entries {
		if e.Cost > 0 {
			positive++
		}
	}
	if positive < minEntries {
		return nil
	}

	flagged := make([]string, 0)
	for i, entry := range entries {
		if entry.Cost <= 0 {
			continue
		}

		sum := 0.0
		count := 0
		for j := i + 1; j < len(entries) && count < windowSize; j++ {
			if entries[j].Cost <= 0 {
				continue
			}
			sum += entries[j].Cost
			count++
		}
		if count < 1 {
			continue
		}

		average := sum / float64(count)
		if entry.Cost > average*toleranceBand {
			flagged = append(flagged, entry.ID)
		}
	}
	return flagged
}
