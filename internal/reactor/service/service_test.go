package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	healthdomain "github.com/platewise/platewise/internal/modulehealth/domain"
	healthservice "github.com/platewise/platewise/internal/modulehealth/service"
	"github.com/platewise/platewise/internal/observability/metrics"
	orgdomain "github.com/platewise/platewise/internal/organization/domain"
	orgrepository "github.com/platewise/platewise/internal/organization/repository"
	"github.com/platewise/platewise/internal/reactor/domain"
	snapshotdomain "github.com/platewise/platewise/internal/snapshot/domain"
	snapshotservice "github.com/platewise/platewise/internal/snapshot/service"
	"github.com/platewise/platewise/pkg/db"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var reactorNow = time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

type reactorEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   *Service
	orgID snowflake.ID
}

func setupReactor(t *testing.T) reactorEnv {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("new test db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&orgdomain.Organization{},
		&snapshotdomain.FinancialSnapshot{},
		&snapshotdomain.ImportedMetric{},
		&healthdomain.ModuleHealthRecord{},
		&healthdomain.ModuleSyncSignal{},
		&domain.SafetyAudit{},
		&domain.IssueReport{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}

	// Integrated operating mode keeps freshness scoring on the migrated sync
	// signal table instead of raw product tables.
	org := orgdomain.Organization{
		ID:            node.Generate(),
		Name:          "Reactor Test Kitchen",
		OperatingMode: orgdomain.OperatingModeIntegrated,
		Active:        true,
	}
	if err := dbConn.Create(&org).Error; err != nil {
		t.Fatalf("insert organization: %v", err)
	}

	clk := clock.NewFakeClock(reactorNow)
	m := metrics.NewWith(prometheus.NewRegistry())
	snapshots := snapshotservice.New(snapshotservice.Params{
		DB: dbConn, Log: zap.NewNop(), GenID: node, Clock: clk, Metrics: m,
	})
	health := healthservice.New(healthservice.Params{
		DB: dbConn, Log: zap.NewNop(), Clock: clk,
		Orgs: orgrepository.Provide(orgrepository.Params{DB: dbConn}),
	})
	svc := New(Params{
		DB: dbConn, Log: zap.NewNop(),
		Snapshots: snapshots, Health: health, Metrics: m,
	})

	return reactorEnv{db: dbConn, node: node, svc: svc, orgID: org.ID}
}

// seedFreshSignals puts every tracked module within the fresh band so
// freshness rules stay quiet.
func seedFreshSignals(t *testing.T, env reactorEnv) {
	t.Helper()

	synced := reactorNow.Add(-time.Hour)
	for _, mod := range healthdomain.SyncModules {
		sig := healthdomain.ModuleSyncSignal{
			OrgID:        env.orgID,
			ModuleKey:    mod.Key,
			LastSyncedAt: &synced,
			RecordCount:  1,
		}
		if err := env.db.Create(&sig).Error; err != nil {
			t.Fatalf("insert sync signal %s: %v", mod.Key, err)
		}
	}
}

func seedSnapshot(t *testing.T, env reactorEnv, mutate func(*snapshotdomain.FinancialSnapshot)) {
	t.Helper()

	day := reactorNow.Truncate(24 * time.Hour)
	snap := snapshotdomain.FinancialSnapshot{
		ID:          env.node.Generate(),
		OrgID:       env.orgID,
		PeriodStart: day,
		PeriodEnd:   day,
		PeriodType:  snapshotdomain.PeriodTypeDaily,

		RevenueTotal: 10000,
		CogsFood:     2500,
		LabourPct:    25,
		NetProfitPct: 12,
		GeneratedAt:  reactorNow,
	}
	if mutate != nil {
		mutate(&snap)
	}
	if err := env.db.Create(&snap).Error; err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}
}

func alertsByID(alerts []domain.Alert) map[string]domain.Alert {
	out := make(map[string]domain.Alert, len(alerts))
	for _, a := range alerts {
		out[a.ID] = a
	}
	return out
}

func TestLabourCriticalEmitsSingleAlert(t *testing.T) {
	env := setupReactor(t)
	seedFreshSignals(t, env)
	seedSnapshot(t, env, func(s *snapshotdomain.FinancialSnapshot) {
		s.LabourPct = 33
	})

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	byID := alertsByID(alerts)
	critical, ok := byID["labour_high"]
	if !ok {
		t.Fatalf("expected labour_high alert, got %v", alerts)
	}
	if critical.Level != domain.LevelCritical {
		t.Fatalf("expected labour_high critical, got %s", critical.Level)
	}
	if _, ok := byID["labour_trending_high"]; ok {
		t.Fatalf("critical labour must suppress the trending warning: %v", alerts)
	}
}

func TestLabourWarningBand(t *testing.T) {
	env := setupReactor(t)
	seedFreshSignals(t, env)
	seedSnapshot(t, env, func(s *snapshotdomain.FinancialSnapshot) {
		s.LabourPct = 29
	})

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	byID := alertsByID(alerts)
	warning, ok := byID["labour_trending_high"]
	if !ok || warning.Level != domain.LevelWarning {
		t.Fatalf("expected labour_trending_high warning, got %v", alerts)
	}
	if _, ok := byID["labour_high"]; ok {
		t.Fatalf("labour at 29%% must not be critical: %v", alerts)
	}
}

func TestZeroRevenueSkipsFoodCostRule(t *testing.T) {
	env := setupReactor(t)
	seedFreshSignals(t, env)
	seedSnapshot(t, env, func(s *snapshotdomain.FinancialSnapshot) {
		s.RevenueTotal = 0
		s.CogsFood = 500
	})

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := alertsByID(alerts)["food_cost_high"]; ok {
		t.Fatalf("food cost rule must not fire on zero revenue: %v", alerts)
	}
}

func TestFreshnessAlertsByStatus(t *testing.T) {
	env := setupReactor(t)

	// One stale signal, the other five modules have never synced.
	synced := reactorNow.Add(-100 * time.Hour)
	sig := healthdomain.ModuleSyncSignal{
		OrgID:        env.orgID,
		ModuleKey:    "recipes",
		LastSyncedAt: &synced,
		RecordCount:  5,
	}
	if err := env.db.Create(&sig).Error; err != nil {
		t.Fatalf("insert sync signal: %v", err)
	}

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	byID := alertsByID(alerts)
	stale, ok := byID["module_recipes"]
	if !ok || stale.Level != domain.LevelWarning {
		t.Fatalf("expected stale recipes warning, got %v", alerts)
	}
	if !strings.Contains(stale.Detail, synced.UTC().Format(time.RFC3339)) {
		t.Fatalf("expected last-data timestamp in detail, got %q", stale.Detail)
	}
	missing, ok := byID["module_labour"]
	if !ok || missing.Level != domain.LevelCritical {
		t.Fatalf("expected no-data labour critical, got %v", alerts)
	}
	if missing.Detail != "No data has been recorded." {
		t.Fatalf("unexpected no-data detail: %q", missing.Detail)
	}
}

func TestAuditScoreRule(t *testing.T) {
	env := setupReactor(t)
	seedFreshSignals(t, env)

	audits := []domain.SafetyAudit{
		{ID: env.node.Generate(), OrgID: env.orgID, Score: 55, ConductedAt: reactorNow.Add(-60 * 24 * time.Hour)},
		{ID: env.node.Generate(), OrgID: env.orgID, Score: 64, ConductedAt: reactorNow.Add(-10 * 24 * time.Hour)},
	}
	if err := env.db.Create(&audits).Error; err != nil {
		t.Fatalf("insert audits: %v", err)
	}

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	audit, ok := alertsByID(alerts)["audit_score_low"]
	if !ok || audit.Level != domain.LevelWarning {
		t.Fatalf("expected audit_score_low warning, got %v", alerts)
	}
	// Only the latest audit counts.
	if !strings.Contains(audit.Detail, "64") {
		t.Fatalf("expected latest audit score in detail, got %q", audit.Detail)
	}
}

func TestIssuePassthrough(t *testing.T) {
	env := setupReactor(t)
	seedFreshSignals(t, env)

	resolved := reactorNow.Add(-time.Hour)
	issues := []domain.IssueReport{
		{ID: env.node.Generate(), OrgID: env.orgID, Severity: "high", Title: "Walk-in fridge failing", Detail: "Temp above 8C overnight.", CreatedAt: reactorNow.Add(-3 * time.Hour)},
		{ID: env.node.Generate(), OrgID: env.orgID, Severity: "medium", Title: "Dishwasher leak", Detail: "Puddle near pass.", CreatedAt: reactorNow.Add(-2 * time.Hour)},
		{ID: env.node.Generate(), OrgID: env.orgID, Severity: "high", Title: "Resolved already", ResolvedAt: &resolved, CreatedAt: reactorNow.Add(-5 * time.Hour)},
	}
	if err := env.db.Create(&issues).Error; err != nil {
		t.Fatalf("insert issues: %v", err)
	}

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var issueAlerts []domain.Alert
	for _, a := range alerts {
		if a.SourceModule == "issues" {
			issueAlerts = append(issueAlerts, a)
		}
	}
	if len(issueAlerts) != 2 {
		t.Fatalf("expected 2 unresolved issue alerts, got %d: %v", len(issueAlerts), issueAlerts)
	}
	// Oldest first.
	if issueAlerts[0].Title != "Walk-in fridge failing" || issueAlerts[0].Level != domain.LevelCritical {
		t.Fatalf("unexpected first issue alert: %+v", issueAlerts[0])
	}
	if issueAlerts[1].Title != "Dishwasher leak" || issueAlerts[1].Level != domain.LevelWarning {
		t.Fatalf("unexpected second issue alert: %+v", issueAlerts[1])
	}
}

func TestRuleEvaluationOrder(t *testing.T) {
	env := setupReactor(t)

	// Breach one rule in every family; leave all modules unsynced so the
	// freshness family fires too.
	seedSnapshot(t, env, func(s *snapshotdomain.FinancialSnapshot) {
		s.LabourPct = 40
		s.NetProfitPct = 1
	})
	audit := domain.SafetyAudit{ID: env.node.Generate(), OrgID: env.orgID, Score: 50, ConductedAt: reactorNow.Add(-24 * time.Hour)}
	if err := env.db.Create(&audit).Error; err != nil {
		t.Fatalf("insert audit: %v", err)
	}
	issue := domain.IssueReport{ID: env.node.Generate(), OrgID: env.orgID, Severity: "high", Title: "Grease trap overdue", CreatedAt: reactorNow.Add(-time.Hour)}
	if err := env.db.Create(&issue).Error; err != nil {
		t.Fatalf("insert issue: %v", err)
	}

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	family := func(a domain.Alert) int {
		switch {
		case a.SourceModule == "financials":
			return 0
		case strings.HasPrefix(a.ID, "module_"):
			return 1
		case a.ID == "audit_score_low":
			return 2
		case strings.HasPrefix(a.ID, "issue_"):
			return 3
		default:
			t.Fatalf("unexpected alert %+v", a)
			return -1
		}
	}
	last := 0
	for _, a := range alerts {
		f := family(a)
		if f < last {
			t.Fatalf("alert families out of evaluation order: %v", alerts)
		}
		last = f
	}
	if last != 3 {
		t.Fatalf("expected all four alert families to fire, got %v", alerts)
	}
}

func TestRunWithoutSnapshotSkipsFinancialRules(t *testing.T) {
	env := setupReactor(t)
	seedFreshSignals(t, env)

	alerts, err := env.svc.Run(context.Background(), env.orgID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, a := range alerts {
		if a.SourceModule == "financials" {
			t.Fatalf("financial rule fired without a snapshot: %+v", a)
		}
	}
}

func TestRunRejectsZeroOrg(t *testing.T) {
	env := setupReactor(t)

	if _, err := env.svc.Run(context.Background(), 0); !errors.Is(err, snapshotdomain.ErrInvalidOrganization) {
		t.Fatalf("expected invalid organization, got %v", err)
	}
}
