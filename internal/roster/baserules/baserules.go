// Package baserules holds the award-derived base assessment of shift-pattern
// risk. The assessor layers additional warnings on top of this verdict.
package baserules

import (
	"fmt"

	"github.com/platewise/platewise/internal/roster/domain"
)

// Assess derives the base risk level and warnings from the three core
// pattern counts.
func Assess(consecutiveDays, shortGapCount, longShiftCount int) (domain.RiskLevel, []string) {
	level := domain.RiskLow
	warnings := make([]string, 0, 3)

	if consecutiveDays > domain.Limits.MaxConsecutiveDays {
		level = domain.Escalate(level, domain.RiskHigh)
		warnings = append(warnings, fmt.Sprintf(
			"Worked %d consecutive days (maximum %d).",
			consecutiveDays, domain.Limits.MaxConsecutiveDays))
	}

	if shortGapCount > 0 {
		proposed := domain.RiskMedium
		if shortGapCount >= 2 {
			proposed = domain.RiskHigh
		}
		level = domain.Escalate(level, proposed)
		warnings = append(warnings, fmt.Sprintf(
			"%d rest gap(s) shorter than %.0f hours.",
			shortGapCount, domain.Limits.MinRestHours))
	}

	if longShiftCount > 0 {
		proposed := domain.RiskMedium
		if longShiftCount >= 3 {
			proposed = domain.RiskHigh
		}
		level = domain.Escalate(level, proposed)
		warnings = append(warnings, fmt.Sprintf(
			"%d shift(s) of %.0f hours or more.",
			longShiftCount, domain.Limits.LongShiftHours))
	}

	return level, warnings
}
