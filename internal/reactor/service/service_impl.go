package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	healthdomain "github.com/platewise/platewise/internal/modulehealth/domain"
	healthservice "github.com/platewise/platewise/internal/modulehealth/service"
	"github.com/platewise/platewise/internal/observability/metrics"
	"github.com/platewise/platewise/internal/reactor/domain"
	snapshotdomain "github.com/platewise/platewise/internal/snapshot/domain"
	snapshotservice "github.com/platewise/platewise/internal/snapshot/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Snapshots *snapshotservice.Service
	Health    *healthservice.Service
	Metrics   *metrics.Metrics
}

// Service applies the fixed threshold rules to the latest persisted inputs
// and emits a prioritized alert list. Alerts are recomputed fresh every run.
type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	snapshots *snapshotservice.Service
	health    *healthservice.Service
	metrics   *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("reactor"),
		snapshots: p.Snapshots,
		health:    p.Health,
		metrics:   p.Metrics,
	}
}

// Run evaluates all rules for one org. The returned slice is in rule
// evaluation order; callers must not re-sort it, the order governs display.
// Missing inputs skip their rules, they never fail the run.
func (s *Service) Run(ctx context.Context, orgID snowflake.ID) ([]domain.Alert, error) {
	started := time.Now()
	defer s.metrics.ObserveJob("reactor_run", started)

	if orgID == 0 {
		return nil, snapshotdomain.ErrInvalidOrganization
	}

	snap, err := s.snapshots.Latest(ctx, orgID)
	if err != nil {
		s.log.Warn("failed to load latest snapshot, skipping financial rules",
			zap.String("org_id", orgID.String()), zap.Error(err))
		snap = nil
	}

	records, err := s.health.ScoreOrg(ctx, orgID)
	if err != nil {
		s.log.Warn("failed to score module health, skipping freshness rules",
			zap.String("org_id", orgID.String()), zap.Error(err))
		records = nil
	}

	alerts := make([]domain.Alert, 0, 8)
	alerts = append(alerts, financialAlerts(snap)...)
	alerts = append(alerts, freshnessAlerts(records)...)
	alerts = append(alerts, s.auditAlerts(ctx, orgID)...)
	alerts = append(alerts, s.issueAlerts(ctx, orgID)...)

	for _, alert := range alerts {
		s.metrics.AlertsEmitted.WithLabelValues(string(alert.Level)).Inc()
	}
	return alerts, nil
}

func financialAlerts(snap *snapshotdomain.FinancialSnapshot) []domain.Alert {
	if snap == nil {
		return nil
	}
	t := domain.Thresholds
	alerts := make([]domain.Alert, 0, 4)

	switch {
	case snap.LabourPct > t.LabourCriticalPct:
		alerts = append(alerts, domain.Alert{
			ID:           "labour_high",
			Level:        domain.LevelCritical,
			Title:        "Labour cost high",
			Detail:       fmt.Sprintf("Labour is %.1f%% of revenue (threshold %.0f%%).", snap.LabourPct, t.LabourCriticalPct),
			SourceModule: "financials",
		})
	case snap.LabourPct > t.LabourWarningPct:
		alerts = append(alerts, domain.Alert{
			ID:           "labour_trending_high",
			Level:        domain.LevelWarning,
			Title:        "Labour cost trending high",
			Detail:       fmt.Sprintf("Labour is %.1f%% of revenue (watch threshold %.0f%%).", snap.LabourPct, t.LabourWarningPct),
			SourceModule: "financials",
		})
	}

	// Revenue of zero makes the food-cost ratio meaningless; skip the rule.
	if snap.RevenueTotal > 0 {
		foodCostPct := snap.CogsFood / snap.RevenueTotal * 100
		if foodCostPct > t.FoodCostCriticalPct {
			alerts = append(alerts, domain.Alert{
				ID:           "food_cost_high",
				Level:        domain.LevelCritical,
				Title:        "Food cost high",
				Detail:       fmt.Sprintf("Food cost is %.1f%% of revenue (threshold %.0f%%).", foodCostPct, t.FoodCostCriticalPct),
				SourceModule: "financials",
			})
		}
	}

	if snap.OpsSuppliesPct > t.OpsSuppliesWarningPct {
		alerts = append(alerts, domain.Alert{
			ID:           "ops_supplies_high",
			Level:        domain.LevelWarning,
			Title:        "Operating supplies high",
			Detail:       fmt.Sprintf("Operating supplies are %.1f%% of revenue (threshold %.0f%%).", snap.OpsSuppliesPct, t.OpsSuppliesWarningPct),
			SourceModule: "financials",
		})
	}

	if snap.NetProfitPct < t.NetProfitCriticalPct {
		alerts = append(alerts, domain.Alert{
			ID:           "net_profit_low",
			Level:        domain.LevelCritical,
			Title:        "Net profit low",
			Detail:       fmt.Sprintf("Net profit is %.1f%% of revenue (threshold %.0f%%).", snap.NetProfitPct, t.NetProfitCriticalPct),
			SourceModule: "financials",
		})
	}

	return alerts
}

func freshnessAlerts(records []healthdomain.ModuleHealthRecord) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(records))
	for _, r := range records {
		var level domain.Level
		switch r.Status {
		case healthdomain.StatusStale:
			level = domain.LevelWarning
		case healthdomain.StatusVeryStale, healthdomain.StatusNoData:
			level = domain.LevelCritical
		default:
			continue
		}

		detail := "No data has been recorded."
		if r.LastDataAt != nil {
			detail = fmt.Sprintf("Last data at %s.", r.LastDataAt.UTC().Format(time.RFC3339))
		}
		alerts = append(alerts, domain.Alert{
			ID:           "module_" + r.ModuleKey,
			Level:        level,
			Title:        fmt.Sprintf("%s data %s", r.Label, statusVerb(r.Status)),
			Detail:       detail,
			SourceModule: r.ModuleKey,
		})
	}
	return alerts
}

func statusVerb(status healthdomain.Status) string {
	switch status {
	case healthdomain.StatusNoData:
		return "missing"
	case healthdomain.StatusVeryStale:
		return "very stale"
	default:
		return "stale"
	}
}

func (s *Service) auditAlerts(ctx context.Context, orgID snowflake.ID) []domain.Alert {
	var rows []domain.SafetyAudit
	if err := s.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("conducted_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		s.log.Warn("failed to load audit score, skipping audit rule",
			zap.String("org_id", orgID.String()), zap.Error(err))
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	audit := rows[0]
	if audit.Score >= domain.Thresholds.AuditWarningScore {
		return nil
	}
	return []domain.Alert{{
		ID:           "audit_score_low",
		Level:        domain.LevelWarning,
		Title:        "Safety audit score low",
		Detail:       fmt.Sprintf("Latest audit scored %.0f (threshold %.0f).", audit.Score, domain.Thresholds.AuditWarningScore),
		SourceModule: "safety_audit",
	}}
}

// issueAlerts mirrors unresolved issue records. The issues feature may not
// exist for a tenant; any failure degrades to an empty list.
func (s *Service) issueAlerts(ctx context.Context, orgID snowflake.ID) []domain.Alert {
	var issues []domain.IssueReport
	if err := s.db.WithContext(ctx).
		Where("org_id = ? AND resolved_at IS NULL", orgID).
		Order("created_at ASC").
		Find(&issues).Error; err != nil {
		s.log.Warn("failed to load issue reports, skipping issue rules",
			zap.String("org_id", orgID.String()), zap.Error(err))
		return nil
	}

	alerts := make([]domain.Alert, 0, len(issues))
	for _, issue := range issues {
		level := domain.LevelWarning
		if issue.Severity == "high" {
			level = domain.LevelCritical
		}
		alerts = append(alerts, domain.Alert{
			ID:           "issue_" + issue.ID.String(),
			Level:        level,
			Title:        issue.Title,
			Detail:       issue.Detail,
			SourceModule: "issues",
		})
	}
	return alerts
}
