package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	PeriodTypeDaily  = "daily"
	PeriodTypeWeekly = "weekly"
)

// FinancialSnapshot is one persisted, period-scoped financial aggregate for an
// organization. (org_id, period_start, period_end, period_type) is the natural
// key; generated_at is always the write time.
type FinancialSnapshot struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"uniqueIndex:ux_snapshot_period,priority:1" json:"org_id"`
	PeriodStart time.Time    `gorm:"uniqueIndex:ux_snapshot_period,priority:2" json:"period_start"`
	PeriodEnd   time.Time    `gorm:"uniqueIndex:ux_snapshot_period,priority:3" json:"period_end"`
	PeriodType  string       `gorm:"uniqueIndex:ux_snapshot_period,priority:4" json:"period_type"`

	RevenueTotal      float64 `gorm:"default:0" json:"revenue_total"`
	CogsFood          float64 `gorm:"default:0" json:"cogs_food"`
	CogsBeverage      float64 `gorm:"default:0" json:"cogs_beverage"`
	CogsWasteFood     float64 `gorm:"default:0" json:"cogs_waste_food"`
	CogsWasteBeverage float64 `gorm:"default:0" json:"cogs_waste_beverage"`
	LabourWages       float64 `gorm:"default:0" json:"labour_wages"`
	LabourSuper       float64 `gorm:"default:0" json:"labour_super"`
	LabourOvertime    float64 `gorm:"default:0" json:"labour_overtime"`
	LabourTotal       float64 `gorm:"default:0" json:"labour_total"`
	OverheadTotal     float64 `gorm:"default:0" json:"overhead_total"`
	OpsSuppliesTotal  float64 `gorm:"default:0" json:"ops_supplies_total"`
	CoversTotal       int64   `gorm:"default:0" json:"covers_total"`

	GrossProfit         float64 `gorm:"default:0" json:"gross_profit"`
	GrossMarginPct      float64 `gorm:"default:0" json:"gross_margin_pct"`
	PrimeCost           float64 `gorm:"default:0" json:"prime_cost"`
	PrimeCostPct        float64 `gorm:"default:0" json:"prime_cost_pct"`
	NetProfit           float64 `gorm:"default:0" json:"net_profit"`
	NetProfitPct        float64 `gorm:"default:0" json:"net_profit_pct"`
	LabourPct           float64 `gorm:"default:0" json:"labour_pct"`
	OverheadPct         float64 `gorm:"default:0" json:"overhead_pct"`
	OpsSuppliesPct      float64 `gorm:"default:0" json:"ops_supplies_pct"`
	AvgSpendPerCover    float64 `gorm:"default:0" json:"avg_spend_per_cover"`
	BreakEvenRevenue    float64 `gorm:"default:0" json:"break_even_revenue"`
	DataCompletenessPct float64 `gorm:"default:0" json:"data_completeness_pct"`

	GeneratedAt time.Time `json:"generated_at"`
}

func (FinancialSnapshot) TableName() string { return "financial_snapshots" }

// ImportedMetric is a pre-aggregated external record supplied by an
// accounting/POS integration, scoped to a day and tagged with a data type.
type ImportedMetric struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"index"`
	DataType   string       `gorm:"not null;index"`
	Amount     float64      `gorm:"not null"`
	RecordedOn time.Time    `gorm:"not null;index"`
	CreatedAt  time.Time    `gorm:"autoCreateTime"`
}

func (ImportedMetric) TableName() string { return "imported_metrics" }

// Imported-channel data types understood by the aggregator.
const (
	ImportRevenue        = "revenue"
	ImportCogsFood       = "cogs_food"
	ImportCogsBeverage   = "cogs_beverage"
	ImportWasteFood      = "waste_food"
	ImportWasteBeverage  = "waste_beverage"
	ImportLabourWages    = "labour_wages"
	ImportLabourSuper    = "labour_super"
	ImportLabourOvertime = "labour_overtime"
	ImportOverhead       = "overhead"
	ImportOpsSupplies    = "ops_supplies"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidPeriod       = errors.New("invalid_period")
)
