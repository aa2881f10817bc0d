package domain

import "time"

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentPartTime EmploymentType = "PART_TIME"
	EmploymentCasual   EmploymentType = "CASUAL"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ShiftRecord is one rostered shift. Clock times are "HH:MM"; a shift whose
// end reads before its start runs overnight. Read-only input to the assessor.
type ShiftRecord struct {
	WorkerID     string    `json:"worker_id"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	BreakMinutes int       `json:"break_minutes"`
}

// GapViolation flags a rest gap below the minimum between shifts on
// consecutive days.
type GapViolation struct {
	Date      time.Time `json:"date"`
	PrevEnd   string    `json:"prev_end"`
	NextStart string    `json:"next_start"`
	RestHours float64   `json:"rest_hours"`
}

// FatigueAssessment is recomputed in full from the supplied shift window on
// every call; there is no incremental state.
type FatigueAssessment struct {
	WorkerID              string         `json:"worker_id"`
	ConsecutiveDays       int            `json:"consecutive_days"`
	MaxConsecutiveAllowed int            `json:"max_consecutive_allowed"`
	ShortGaps             []GapViolation `json:"short_gaps"`
	LongShifts            []ShiftRecord  `json:"long_shifts"`
	TotalWeeklyHours      float64        `json:"total_weekly_hours"`
	RiskLevel             RiskLevel      `json:"risk_level"`
	Warnings              []string       `json:"warnings"`
}

// Limits are the fixed compliance thresholds, declarative so tests assert
// against the same table the assessor reads.
var Limits = struct {
	MaxConsecutiveDays int
	MinRestHours       float64
	LongShiftHours     float64
	WeeklyHoursWarning float64
	MinEngagementHours float64
	SplitSpreadHours   float64
}{
	MaxConsecutiveDays: 7,
	MinRestHours:       10,
	LongShiftHours:     10,
	WeeklyHoursWarning: 50,
	MinEngagementHours: 3,
	SplitSpreadHours:   12,
}

// Escalate returns the higher of two risk levels; risk is never downgraded.
func Escalate(current, proposed RiskLevel) RiskLevel {
	if rank(proposed) > rank(current) {
		return proposed
	}
	return current
}

func rank(level RiskLevel) int {
	switch level {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}
