package service

import (
	"strings"
	"testing"
	"time"

	"github.com/platewise/platewise/internal/roster/domain"
	"go.uber.org/zap"
)

var weekStart = time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC) // a Monday

func newAssessor() *Assessor {
	return New(Params{Log: zap.NewNop()})
}

func shiftOn(dayOffset int, start, end string) domain.ShiftRecord {
	return domain.ShiftRecord{
		WorkerID:  "w1",
		Date:      weekStart.AddDate(0, 0, dayOffset),
		StartTime: start,
		EndTime:   end,
	}
}

func hasWarningContaining(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestShortRestGapFlagged(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "14:00", "23:00"),
			shiftOn(1, "07:00", "15:00"), // 8h rest
		},
	})

	if len(got.ShortGaps) != 1 {
		t.Fatalf("expected one short gap, got %+v", got.ShortGaps)
	}
	gap := got.ShortGaps[0]
	if gap.RestHours != 8 {
		t.Fatalf("expected 8h rest, got %v", gap.RestHours)
	}
	if gap.PrevEnd != "23:00" || gap.NextStart != "07:00" {
		t.Fatalf("unexpected gap endpoints: %+v", gap)
	}
	if got.RiskLevel != domain.RiskMedium {
		t.Fatalf("one short gap should assess MEDIUM, got %s", got.RiskLevel)
	}
}

func TestExactMinimumRestNotFlagged(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "14:00", "23:00"),
			shiftOn(1, "09:00", "17:00"), // exactly 10h rest
		},
	})

	if len(got.ShortGaps) != 0 {
		t.Fatalf("a 10h gap meets the minimum, got %+v", got.ShortGaps)
	}
	if got.RiskLevel != domain.RiskLow {
		t.Fatalf("expected LOW, got %s", got.RiskLevel)
	}
}

func TestTwoShortGapsAssessHigh(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "16:00", "23:00"),
			shiftOn(1, "07:00", "11:00"), // 8h after the previous close
			shiftOn(1, "17:00", "21:00"),
			shiftOn(2, "05:00", "09:00"), // 8h after the previous close
		},
	})

	if len(got.ShortGaps) != 2 {
		t.Fatalf("expected two short gaps, got %+v", got.ShortGaps)
	}
	if got.RiskLevel != domain.RiskHigh {
		t.Fatalf("two short gaps should assess HIGH, got %s", got.RiskLevel)
	}
}

func TestConsecutiveDaysOverLimit(t *testing.T) {
	a := newAssessor()

	shifts := make([]domain.ShiftRecord, 0, 8)
	for d := 0; d < 8; d++ {
		shifts = append(shifts, shiftOn(d, "10:00", "16:00"))
	}
	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts:         shifts,
	})

	if got.ConsecutiveDays != 8 {
		t.Fatalf("expected 8 consecutive days, got %d", got.ConsecutiveDays)
	}
	if got.MaxConsecutiveAllowed != domain.Limits.MaxConsecutiveDays {
		t.Fatalf("expected limit %d surfaced, got %d", domain.Limits.MaxConsecutiveDays, got.MaxConsecutiveAllowed)
	}
	if got.RiskLevel != domain.RiskHigh {
		t.Fatalf("8 consecutive days should assess HIGH, got %s", got.RiskLevel)
	}
	if !hasWarningContaining(got.Warnings, "consecutive") {
		t.Fatalf("expected a consecutive-days warning, got %v", got.Warnings)
	}
}

func TestConsecutiveRunBreaksOnDayOff(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "10:00", "16:00"),
			shiftOn(1, "10:00", "16:00"),
			// day 2 off
			shiftOn(3, "10:00", "16:00"),
			shiftOn(4, "10:00", "16:00"),
			shiftOn(5, "10:00", "16:00"),
		},
	})

	// The run is counted backward from the most recent day.
	if got.ConsecutiveDays != 3 {
		t.Fatalf("expected run of 3 ending at the latest day, got %d", got.ConsecutiveDays)
	}
}

func TestLongShiftEscalation(t *testing.T) {
	a := newAssessor()

	one := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts:         []domain.ShiftRecord{shiftOn(0, "08:00", "19:00")}, // 11h
	})
	if len(one.LongShifts) != 1 || one.RiskLevel != domain.RiskMedium {
		t.Fatalf("one long shift should assess MEDIUM, got %s with %d long shifts", one.RiskLevel, len(one.LongShifts))
	}

	three := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "08:00", "19:00"),
			shiftOn(2, "08:00", "19:00"),
			shiftOn(4, "08:00", "19:00"),
		},
	})
	if len(three.LongShifts) != 3 || three.RiskLevel != domain.RiskHigh {
		t.Fatalf("three long shifts should assess HIGH, got %s with %d long shifts", three.RiskLevel, len(three.LongShifts))
	}
}

func TestBreaksReduceWorkedTime(t *testing.T) {
	a := newAssessor()

	// 10.5h wall clock minus a one hour break lands under the long-shift bar.
	s := shiftOn(0, "08:00", "18:30")
	s.BreakMinutes = 60
	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts:         []domain.ShiftRecord{s},
	})

	if len(got.LongShifts) != 0 {
		t.Fatalf("break time must not count as worked time, got %+v", got.LongShifts)
	}
	if got.TotalWeeklyHours != 9.5 {
		t.Fatalf("expected 9.5 worked hours, got %v", got.TotalWeeklyHours)
	}
}

func TestOvernightShiftWraps(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "22:00", "06:00"), // ends 06:00 next calendar day
			shiftOn(1, "12:00", "18:00"),
		},
	})

	if got.TotalWeeklyHours != 14 {
		t.Fatalf("expected 14 worked hours across both shifts, got %v", got.TotalWeeklyHours)
	}
	// 06:00 to 12:00 is six hours of rest.
	if len(got.ShortGaps) != 1 {
		t.Fatalf("expected the wrapped end to shorten the rest gap, got %+v", got.ShortGaps)
	}
	if got.ShortGaps[0].RestHours != 6 {
		t.Fatalf("expected 6h rest, got %v", got.ShortGaps[0].RestHours)
	}
}

func TestCasualMinimumEngagement(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentCasual,
		Shifts:         []domain.ShiftRecord{shiftOn(0, "10:00", "12:00")},
	})

	if !hasWarningContaining(got.Warnings, "minimum engagement") {
		t.Fatalf("expected a minimum engagement warning, got %v", got.Warnings)
	}
	if got.RiskLevel != domain.RiskMedium {
		t.Fatalf("extra warnings escalate LOW to MEDIUM, got %s", got.RiskLevel)
	}

	fullTime := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts:         []domain.ShiftRecord{shiftOn(0, "10:00", "12:00")},
	})
	if hasWarningContaining(fullTime.Warnings, "minimum engagement") {
		t.Fatalf("minimum engagement does not apply to full-time, got %v", fullTime.Warnings)
	}
}

func TestSplitShiftSpread(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts: []domain.ShiftRecord{
			shiftOn(0, "08:00", "11:00"),
			shiftOn(0, "21:30", "23:30"), // 15.5h first start to last end
		},
	})

	if !hasWarningContaining(got.Warnings, "spread limit") {
		t.Fatalf("expected a split-shift spread warning, got %v", got.Warnings)
	}
	if got.RiskLevel != domain.RiskMedium {
		t.Fatalf("expected MEDIUM from the extra warning, got %s", got.RiskLevel)
	}
}

func TestWeeklyHoursWarning(t *testing.T) {
	a := newAssessor()

	shifts := make([]domain.ShiftRecord, 0, 6)
	for d := 0; d < 6; d++ {
		shifts = append(shifts, shiftOn(d, "08:00", "17:00")) // 9h each, 54 total
	}
	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentFullTime,
		Shifts:         shifts,
	})

	if got.TotalWeeklyHours != 54 {
		t.Fatalf("expected 54 hours, got %v", got.TotalWeeklyHours)
	}
	if !hasWarningContaining(got.Warnings, "exceeds") {
		t.Fatalf("expected a weekly hours warning, got %v", got.Warnings)
	}
	if got.RiskLevel != domain.RiskMedium {
		t.Fatalf("expected MEDIUM, got %s", got.RiskLevel)
	}
}

func TestEmptyWindow(t *testing.T) {
	a := newAssessor()

	got := a.Assess(AssessRequest{
		WorkerID:       "w1",
		EmploymentType: domain.EmploymentCasual,
	})

	if got.RiskLevel != domain.RiskLow {
		t.Fatalf("expected LOW for empty window, got %s", got.RiskLevel)
	}
	if got.ConsecutiveDays != 0 || got.TotalWeeklyHours != 0 || len(got.Warnings) != 0 {
		t.Fatalf("expected a zeroed assessment, got %+v", got)
	}
}

func TestEscalateNeverDowngrades(t *testing.T) {
	if got := domain.Escalate(domain.RiskHigh, domain.RiskLow); got != domain.RiskHigh {
		t.Fatalf("HIGH must not downgrade, got %s", got)
	}
	if got := domain.Escalate(domain.RiskLow, domain.RiskMedium); got != domain.RiskMedium {
		t.Fatalf("expected escalation to MEDIUM, got %s", got)
	}
}
