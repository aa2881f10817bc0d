package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Alert is recomputed fresh on every reactor run; it is not a persisted
// delta and carries no resolved/unresolved lifecycle.
type Alert struct {
	ID           string `json:"id"`
	Level        Level  `json:"level"`
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	SourceModule string `json:"source_module"`
}

// Thresholds are the fixed rule constants, kept as one declarative table so
// tests assert against the same values the engine reads. Not configurable at
// runtime.
var Thresholds = struct {
	LabourCriticalPct     float64
	LabourWarningPct      float64
	FoodCostCriticalPct   float64
	OpsSuppliesWarningPct float64
	NetProfitCriticalPct  float64
	AuditWarningScore     float64
}{
	LabourCriticalPct:     32,
	LabourWarningPct:      28,
	FoodCostCriticalPct:   35,
	OpsSuppliesWarningPct: 4,
	NetProfitCriticalPct:  5,
	AuditWarningScore:     70,
}

// SafetyAudit is the latest external audit result for an org. Read-only input.
type SafetyAudit struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrgID       snowflake.ID `gorm:"index"`
	Score       float64      `gorm:"not null"`
	ConductedAt time.Time    `gorm:"not null;index"`
	CreatedAt   time.Time    `gorm:"autoCreateTime"`
}

func (SafetyAudit) TableName() string { return "safety_audits" }

// IssueReport is an operator-raised issue; resolution is managed upstream,
// the reactor only mirrors unresolved ones into the alert list.
type IssueReport struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"index"`
	Severity   string       `gorm:"not null"`
	Title      string       `gorm:"not null"`
	Detail     string
	ResolvedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (IssueReport) TableName() string { return "issue_reports" }
