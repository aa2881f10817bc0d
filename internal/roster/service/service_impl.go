package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/platewise/platewise/internal/roster/baserules"
	"github.com/platewise/platewise/internal/roster/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minutesPerDay = 24 * 60

type Params struct {
	fx.In

	Log *zap.Logger
}

// Assessor computes fatigue and compliance risk from one worker's shift
// window. It is a pure function of its input; safe to run in parallel across
// workers.
type Assessor struct {
	log *zap.Logger
}

func New(p Params) *Assessor {
	return &Assessor{log: p.Log.Named("roster.fatigue")}
}

type AssessRequest struct {
	WorkerID       string                `json:"worker_id"`
	EmploymentType domain.EmploymentType `json:"employment_type"`
	// Classification is carried for context only; it is not scored.
	Classification string                `json:"classification"`
	Shifts         []domain.ShiftRecord  `json:"shifts"`
}

func (a *Assessor) Assess(req AssessRequest) domain.FatigueAssessment {
	shifts := sortShifts(req.Shifts)

	consecutive := consecutiveDays(shifts)
	gaps := shortGaps(shifts)
	long := longShifts(shifts)
	weekly := totalHours(shifts)

	baseLevel, baseWarnings := baserules.Assess(consecutive, len(gaps), len(long))

	additional := make([]string, 0, 4)
	if weekly > domain.Limits.WeeklyHoursWarning {
		additional = append(additional, fmt.Sprintf(
			"Total of %.1f hours this period exceeds %.0f.",
			weekly, domain.Limits.WeeklyHoursWarning))
	}
	additional = append(additional, minimumEngagementWarnings(req.EmploymentType, shifts)...)
	additional = append(additional, splitShiftWarnings(shifts)...)

	// Extra warnings escalate an otherwise clean base verdict to MEDIUM;
	// they never downgrade it.
	level := baseLevel
	if level == domain.RiskLow && len(additional) > 0 {
		level = domain.RiskMedium
	}

	warnings := make([]string, 0, len(baseWarnings)+len(additional))
	warnings = append(warnings, baseWarnings...)
	warnings = append(warnings, additional...)

	return domain.FatigueAssessment{
		WorkerID:              req.WorkerID,
		ConsecutiveDays:       consecutive,
		MaxConsecutiveAllowed: domain.Limits.MaxConsecutiveDays,
		ShortGaps:             gaps,
		LongShifts:            long,
		TotalWeeklyHours:      round1(weekly),
		RiskLevel:             level,
		Warnings:              warnings,
	}
}

func sortShifts(shifts []domain.ShiftRecord) []domain.ShiftRecord {
	out := make([]domain.ShiftRecord, len(shifts))
	copy(out, shifts)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dayOf(out[i].Date), dayOf(out[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		si, _ := parseClock(out[i].StartTime)
		sj, _ := parseClock(out[j].StartTime)
		return si < sj
	})
	return out
}

// workedMinutes is wall-clock duration minus breaks, with overnight shifts
// wrapped by a day before subtracting.
func workedMinutes(s domain.ShiftRecord) int {
	start, okStart := parseClock(s.StartTime)
	end, okEnd := parseClock(s.EndTime)
	if !okStart || !okEnd {
		return 0
	}
	if end < start {
		end += minutesPerDay
	}
	worked := end - start - s.BreakMinutes
	if worked < 0 {
		return 0
	}
	return worked
}

// endMinutes is the shift end expressed as minutes from its date's midnight,
// past 1440 for overnight shifts.
func endMinutes(s domain.ShiftRecord) int {
	start, okStart := parseClock(s.StartTime)
	end, okEnd := parseClock(s.EndTime)
	if !okStart || !okEnd {
		return 0
	}
	if end < start {
		end += minutesPerDay
	}
	return end
}

// consecutiveDays counts the longest run of calendar days with at least one
// shift, looking backward from the most recent shift in the window.
func consecutiveDays(shifts []domain.ShiftRecord) int {
	if len(shifts) == 0 {
		return 0
	}
	seen := make(map[time.Time]bool, len(shifts))
	for _, s := range shifts {
		seen[dayOf(s.Date)] = true
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			run++
			continue
		}
		break
	}
	return run
}

// shortGaps flags rest gaps below the minimum between the last shift of one
// day and the first shift of the next.
func shortGaps(shifts []domain.ShiftRecord) []domain.GapViolation {
	byDay := groupByDay(shifts)
	days := sortedDays(byDay)

	violations := make([]domain.GapViolation, 0)
	for i := 1; i < len(days); i++ {
		prev, next := days[i-1], days[i]
		if !prev.AddDate(0, 0, 1).Equal(next) {
			continue
		}

		prevShifts := byDay[prev]
		last := prevShifts[0]
		for _, s := range prevShifts {
			if endMinutes(s) > endMinutes(last) {
				last = s
			}
		}
		first := byDay[next][0]

		endAbs := prev.Add(time.Duration(endMinutes(last)) * time.Minute)
		startMin, ok := parseClock(first.StartTime)
		if !ok {
			continue
		}
		startAbs := next.Add(time.Duration(startMin) * time.Minute)

		rest := startAbs.Sub(endAbs).Hours()
		if rest < domain.Limits.MinRestHours {
			violations = append(violations, domain.GapViolation{
				Date:      next,
				PrevEnd:   last.EndTime,
				NextStart: first.StartTime,
				RestHours: round1(rest),
			})
		}
	}
	return violations
}

func longShifts(shifts []domain.ShiftRecord) []domain.ShiftRecord {
	out := make([]domain.ShiftRecord, 0)
	for _, s := range shifts {
		if float64(workedMinutes(s))/60 >= domain.Limits.LongShiftHours {
			out = append(out, s)
		}
	}
	return out
}

func totalHours(shifts []domain.ShiftRecord) float64 {
	total := 0
	for _, s := range shifts {
		total += workedMinutes(s)
	}
	return float64(total) / 60
}

// minimumEngagementWarnings flags shifts under the minimum engagement for
// casual and part-time workers.
func minimumEngagementWarnings(employment domain.EmploymentType, shifts []domain.ShiftRecord) []string {
	if employment != domain.EmploymentCasual && employment != domain.EmploymentPartTime {
		return nil
	}
	warnings := make([]string, 0)
	for _, s := range shifts {
		worked := float64(workedMinutes(s)) / 60
		if worked > 0 && worked < domain.Limits.MinEngagementHours {
			warnings = append(warnings, fmt.Sprintf(
				"Shift on %s is %.1f hours, under the %.0f hour minimum engagement.",
				s.Date.Format("2006-01-02"), worked, domain.Limits.MinEngagementHours))
		}
	}
	return warnings
}

// splitShiftWarnings flags days where the spread from first start to last end
// across multiple shifts exceeds the limit.
func splitShiftWarnings(shifts []domain.ShiftRecord) []string {
	byDay := groupByDay(shifts)

	warnings := make([]string, 0)
	for _, day := range sortedDays(byDay) {
		dayShifts := byDay[day]
		if len(dayShifts) < 2 {
			continue
		}
		earliest, ok := parseClock(dayShifts[0].StartTime)
		if !ok {
			continue
		}
		latest := 0
		for _, s := range dayShifts {
			if end := endMinutes(s); end > latest {
				latest = end
			}
		}
		spread := float64(latest-earliest) / 60
		if spread > domain.Limits.SplitSpreadHours {
			warnings = append(warnings, fmt.Sprintf(
				"Split shifts on %s span %.1f hours, over the %.0f hour spread limit.",
				day.Format("2006-01-02"), spread, domain.Limits.SplitSpreadHours))
		}
	}
	return warnings
}

func groupByDay(shifts []domain.ShiftRecord) map[time.Time][]domain.ShiftRecord {
	byDay := make(map[time.Time][]domain.ShiftRecord)
	for _, s := range shifts {
		day := dayOf(s.Date)
		byDay[day] = append(byDay[day], s)
	}
	return byDay
}

func sortedDays(byDay map[time.Time][]domain.ShiftRecord) []time.Time {
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func parseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
