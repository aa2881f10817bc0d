package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusFresh     Status = "fresh"
	StatusRecent    Status = "recent"
	StatusStale     Status = "stale"
	StatusVeryStale Status = "very_stale"
	StatusNoData    Status = "no_data"
)

// ModuleHealthRecord is the freshness verdict for one operational module.
// Both scoring strategies produce this exact shape.
type ModuleHealthRecord struct {
	OrgID       snowflake.ID `gorm:"uniqueIndex:ux_module_health,priority:1" json:"org_id"`
	ModuleKey   string       `gorm:"uniqueIndex:ux_module_health,priority:2" json:"module_key"`
	Label       string       `json:"label"`
	Score       int          `json:"score"`
	Status      Status       `json:"status"`
	LastDataAt  *time.Time   `json:"last_data_at"`
	RecordCount int64        `json:"record_count"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ModuleHealthRecord) TableName() string { return "module_health_records" }

// ModuleSyncSignal is written by the integration layer whenever a provider
// sync lands data for a module. Read-only input to the sync scorer.
type ModuleSyncSignal struct {
	OrgID        snowflake.ID `gorm:"uniqueIndex:ux_module_sync,priority:1"`
	ModuleKey    string       `gorm:"uniqueIndex:ux_module_sync,priority:2"`
	LastSyncedAt *time.Time
	RecordCount  int64
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (ModuleSyncSignal) TableName() string { return "module_sync_signals" }

// StatusBand maps an elapsed-time ceiling to a status and score. Bands are
// evaluated in order; anything past the last band is very_stale at the floor
// score. Two distinct hour bands intentionally share the very_stale label with
// different scores.
type StatusBand struct {
	MaxAge time.Duration
	Status Status
	Score  int
}

var StatusBands = []StatusBand{
	{MaxAge: 24 * time.Hour, Status: StatusFresh, Score: 100},
	{MaxAge: 72 * time.Hour, Status: StatusRecent, Score: 75},
	{MaxAge: 168 * time.Hour, Status: StatusStale, Score: 50},
	{MaxAge: 336 * time.Hour, Status: StatusVeryStale, Score: 25},
}

const (
	FloorStatus Status = StatusVeryStale
	FloorScore         = 10
	NoDataScore        = 0
)

// ScoreFor resolves the status and score for a last-data timestamp.
// Status is a pure function of elapsed time; score of status.
func ScoreFor(lastDataAt *time.Time, now time.Time) (Status, int) {
	if lastDataAt == nil {
		return StatusNoData, NoDataScore
	}
	age := now.Sub(*lastDataAt)
	for _, band := range StatusBands {
		if age <= band.MaxAge {
			return band.Status, band.Score
		}
	}
	return FloorStatus, FloorScore
}

// SyncModule names a domain module scored from its provider sync signal.
type SyncModule struct {
	Key   string
	Label string
}

// SyncModules is the fixed registry scored in integrated operating mode.
var SyncModules = []SyncModule{
	{Key: "recipes", Label: "Recipes"},
	{Key: "ingredients", Label: "Ingredients"},
	{Key: "safety_checks", Label: "Safety Checks"},
	{Key: "labour", Label: "Labour"},
	{Key: "reservations", Label: "Reservations"},
	{Key: "pos_revenue", Label: "POS & Revenue"},
}

// TableModule names a raw data table scored directly in standalone mode.
type TableModule struct {
	Key        string
	Label      string
	Table      string
	TimeColumn string
}

// TableModules is the fixed registry scored in standalone operating mode.
var TableModules = []TableModule{
	{Key: "recipes", Label: "Recipes", Table: "recipes", TimeColumn: "updated_at"},
	{Key: "pantry_items", Label: "Pantry Items", Table: "pantry_items", TimeColumn: "updated_at"},
	{Key: "safety_logs", Label: "Safety Logs", Table: "safety_logs", TimeColumn: "logged_at"},
	{Key: "prep_lists", Label: "Prep Lists", Table: "prep_lists", TimeColumn: "prepared_at"},
	{Key: "cleaning_completions", Label: "Cleaning Completions", Table: "cleaning_completions", TimeColumn: "completed_at"},
	{Key: "waste_logs", Label: "Waste Logs", Table: "waste_entries", TimeColumn: "recorded_at"},
}
