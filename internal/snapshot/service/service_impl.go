package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/observability/metrics"
	"github.com/platewise/platewise/internal/snapshot/domain"
	pkgdb "github.com/platewise/platewise/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

// Service aggregates heterogeneous financial facts into one periodic snapshot
// per (org, period). It is stateless; every run recomputes from raw inputs.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("snapshot.aggregator"),
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

type GenerateRequest struct {
	OrgID       snowflake.ID
	PeriodStart time.Time
	PeriodEnd   time.Time
	PeriodType  string
}

// Generate builds and upserts the snapshot for one (org, period). Individual
// metric sources that fail or return nothing contribute zero; only malformed
// input aborts the run.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*domain.FinancialSnapshot, error) {
	started := time.Now()
	defer s.metrics.ObserveJob("snapshot_generate", started)

	if req.OrgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	periodType := strings.TrimSpace(req.PeriodType)
	if periodType == "" || req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		return nil, domain.ErrInvalidPeriod
	}
	periodStart := dayOf(req.PeriodStart)
	periodEnd := dayOf(req.PeriodEnd)
	if periodEnd.Before(periodStart) {
		return nil, domain.ErrInvalidPeriod
	}
	// Period bounds are an inclusive date range.
	endExclusive := periodEnd.AddDate(0, 0, 1)

	direct := s.directTotals(ctx, req.OrgID, periodStart, endExclusive)
	imported := s.importedTotals(ctx, req.OrgID, periodStart, endExclusive)
	covers := s.coversTotal(ctx, req.OrgID, periodStart, endExclusive)

	// Merge rule, per metric: a non-zero direct sum wins, else the imported
	// sum, else zero. A legitimately-zero direct metric is indistinguishable
	// from "no direct rows", so imported data can mask a true zero; that is an
	// accepted, documented under-reporting edge, not something to special-case.
	revenue := mergeMetric(direct.Revenue, imported[domain.ImportRevenue])
	cogsFood := mergeMetric(direct.CogsFood, imported[domain.ImportCogsFood])
	cogsBeverage := mergeMetric(direct.CogsBeverage, imported[domain.ImportCogsBeverage])
	wasteFood := mergeMetric(direct.WasteFood, imported[domain.ImportWasteFood])
	wasteBeverage := mergeMetric(direct.WasteBeverage, imported[domain.ImportWasteBeverage])
	labourWages := mergeMetric(direct.LabourWages, imported[domain.ImportLabourWages])
	labourSuper := mergeMetric(direct.LabourSuper, imported[domain.ImportLabourSuper])
	labourOvertime := mergeMetric(direct.LabourOvertime, imported[domain.ImportLabourOvertime])
	overhead := mergeMetric(direct.Overhead, imported[domain.ImportOverhead])
	opsSupplies := mergeMetric(direct.OpsSupplies, imported[domain.ImportOpsSupplies])

	labourTotal := labourWages.Add(labourSuper).Add(labourOvertime)

	grossProfit := revenue.Sub(cogsFood).Sub(cogsBeverage).Sub(wasteFood).Sub(wasteBeverage)
	primeCost := cogsFood.Add(cogsBeverage).Add(labourTotal).Add(opsSupplies)
	netProfit := grossProfit.Sub(labourTotal).Sub(opsSupplies).Sub(overhead)

	avgSpend := decimal.Zero
	if covers > 0 {
		avgSpend = revenue.Div(decimal.NewFromInt(covers))
	}

	snap := &domain.FinancialSnapshot{
		ID:          s.genID.Generate(),
		OrgID:       req.OrgID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		PeriodType:  periodType,

		RevenueTotal:      round2(revenue),
		CogsFood:          round2(cogsFood),
		CogsBeverage:      round2(cogsBeverage),
		CogsWasteFood:     round2(wasteFood),
		CogsWasteBeverage: round2(wasteBeverage),
		LabourWages:       round2(labourWages),
		LabourSuper:       round2(labourSuper),
		LabourOvertime:    round2(labourOvertime),
		LabourTotal:       round2(labourTotal),
		OverheadTotal:     round2(overhead),
		OpsSuppliesTotal:  round2(opsSupplies),
		CoversTotal:       covers,

		GrossProfit:         round2(grossProfit),
		GrossMarginPct:      round2(pctOf(grossProfit, revenue)),
		PrimeCost:           round2(primeCost),
		PrimeCostPct:        round2(pctOf(primeCost, revenue)),
		NetProfit:           round2(netProfit),
		NetProfitPct:        round2(pctOf(netProfit, revenue)),
		LabourPct:           round2(pctOf(labourTotal, revenue)),
		OverheadPct:         round2(pctOf(overhead, revenue)),
		OpsSuppliesPct:      round2(pctOf(opsSupplies, revenue)),
		AvgSpendPerCover:    round2(avgSpend),
		BreakEvenRevenue:    round2(breakEven(grossProfit, revenue, overhead, labourTotal, opsSupplies)),
		DataCompletenessPct: round2(completeness(revenue, cogsFood, cogsBeverage, labourTotal, overhead, opsSupplies)),

		GeneratedAt: s.clock.Now().UTC(),
	}

	stored, err := s.upsert(ctx, snap)
	if err != nil {
		s.metrics.SnapshotRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.SnapshotRuns.WithLabelValues("ok").Inc()
	return stored, nil
}

type directTotals struct {
	Revenue        decimal.Decimal
	CogsFood       decimal.Decimal
	CogsBeverage   decimal.Decimal
	WasteFood      decimal.Decimal
	WasteBeverage  decimal.Decimal
	LabourWages    decimal.Decimal
	LabourSuper    decimal.Decimal
	LabourOvertime decimal.Decimal
	Overhead       decimal.Decimal
	OpsSupplies    decimal.Decimal
}

func (s *Service) directTotals(ctx context.Context, orgID snowflake.ID, start, endExclusive time.Time) directTotals {
	totals := directTotals{
		Revenue: s.sum(ctx, "revenue",
			`SELECT COALESCE(SUM(amount), 0)
			 FROM payments
			 WHERE org_id = ? AND status = ? AND paid_at >= ? AND paid_at < ?`,
			orgID, "completed", start, endExclusive),
		CogsBeverage: s.sum(ctx, "cogs_beverage",
			`SELECT COALESCE(SUM(cost), 0)
			 FROM pour_events
			 WHERE org_id = ? AND poured_at >= ? AND poured_at < ?`,
			orgID, start, endExclusive),
		Overhead: s.sum(ctx, "overhead",
			`SELECT COALESCE(SUM(amount), 0)
			 FROM overhead_entries
			 WHERE org_id = ? AND category <> ? AND incurred_on >= ? AND incurred_on < ?`,
			orgID, "operating_supplies", start, endExclusive),
		OpsSupplies: s.sum(ctx, "ops_supplies",
			`SELECT COALESCE(SUM(amount), 0)
			 FROM overhead_entries
			 WHERE org_id = ? AND category = ? AND incurred_on >= ? AND incurred_on < ?`,
			orgID, "operating_supplies", start, endExclusive),
	}
	// Food COGS has no first-party event table; it only arrives via the
	// imported channel.

	var labour struct {
		Wages    float64 `gorm:"column:wages"`
		Super    float64 `gorm:"column:super_total"`
		Overtime float64 `gorm:"column:overtime"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(wages), 0) AS wages,
		        COALESCE(SUM(super_amount), 0) AS super_total,
		        COALESCE(SUM(overtime), 0) AS overtime
		 FROM shifts
		 WHERE org_id = ? AND date >= ? AND date < ?`,
		orgID, start, endExclusive,
	).Scan(&labour).Error; err != nil {
		s.log.Warn("labour source query failed, treating as zero", zap.Error(err))
	} else {
		totals.LabourWages = decimal.NewFromFloat(labour.Wages)
		totals.LabourSuper = decimal.NewFromFloat(labour.Super)
		totals.LabourOvertime = decimal.NewFromFloat(labour.Overtime)
	}

	var waste []struct {
		Kind  string  `gorm:"column:kind"`
		Total float64 `gorm:"column:total"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT kind, COALESCE(SUM(cost), 0) AS total
		 FROM waste_entries
		 WHERE org_id = ? AND recorded_at >= ? AND recorded_at < ?
		 GROUP BY kind`,
		orgID, start, endExclusive,
	).Scan(&waste).Error; err != nil {
		s.log.Warn("waste source query failed, treating as zero", zap.Error(err))
	} else {
		for _, row := range waste {
			switch strings.TrimSpace(row.Kind) {
			case "food":
				totals.WasteFood = decimal.NewFromFloat(row.Total)
			case "beverage":
				totals.WasteBeverage = decimal.NewFromFloat(row.Total)
			}
		}
	}

	return totals
}

// coversTotal counts seated covers from reservations. Covers have no imported
// counterpart; a missing source contributes zero like any other channel.
func (s *Service) coversTotal(ctx context.Context, orgID snowflake.ID, start, endExclusive time.Time) int64 {
	var covers int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(covers), 0)
		 FROM reservation_covers
		 WHERE org_id = ? AND seated_at >= ? AND seated_at < ?`,
		orgID, start, endExclusive,
	).Scan(&covers).Error; err != nil {
		s.log.Warn("covers source query failed, treating as zero", zap.Error(err))
		return 0
	}
	return covers
}

func (s *Service) importedTotals(ctx context.Context, orgID snowflake.ID, start, endExclusive time.Time) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)

	var rows []struct {
		DataType string  `gorm:"column:data_type"`
		Total    float64 `gorm:"column:total"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT data_type, COALESCE(SUM(amount), 0) AS total
		 FROM imported_metrics
		 WHERE org_id = ? AND recorded_on >= ? AND recorded_on < ?
		 GROUP BY data_type`,
		orgID, start, endExclusive,
	).Scan(&rows).Error; err != nil {
		s.log.Warn("imported channel query failed, treating as empty", zap.Error(err))
		return totals
	}

	for _, row := range rows {
		totals[strings.TrimSpace(row.DataType)] = decimal.NewFromFloat(row.Total)
	}
	return totals
}

func (s *Service) sum(ctx context.Context, metric, query string, args ...any) decimal.Decimal {
	var value float64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&value).Error; err != nil {
		s.log.Warn("metric source query failed, treating as zero",
			zap.String("metric", metric), zap.Error(err))
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

func (s *Service) upsert(ctx context.Context, snap *domain.FinancialSnapshot) (*domain.FinancialSnapshot, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "org_id"},
			{Name: "period_start"},
			{Name: "period_end"},
			{Name: "period_type"},
		},
		DoUpdates: clause.AssignmentColumns(snapshotValueColumns),
	}).Create(snap).Error
	if err != nil {
		// A store without the uniqueness constraint cannot express the
		// conflict clause; degrade to a plain insert. Readers de-duplicate by
		// max(generated_at) per natural key.
		s.log.Warn("snapshot upsert failed, falling back to insert",
			zap.String("org_id", snap.OrgID.String()),
			zap.Bool("duplicate_key", pkgdb.IsDuplicateKeyErr(err)),
			zap.Error(err))
		snap.ID = s.genID.Generate()
		if insertErr := s.db.WithContext(ctx).Create(snap).Error; insertErr != nil {
			return nil, insertErr
		}
	}

	return s.LatestForPeriod(ctx, snap.OrgID, snap.PeriodStart, snap.PeriodEnd, snap.PeriodType)
}

var snapshotValueColumns = []string{
	"revenue_total",
	"cogs_food",
	"cogs_beverage",
	"cogs_waste_food",
	"cogs_waste_beverage",
	"labour_wages",
	"labour_super",
	"labour_overtime",
	"labour_total",
	"overhead_total",
	"ops_supplies_total",
	"covers_total",
	"gross_profit",
	"gross_margin_pct",
	"prime_cost",
	"prime_cost_pct",
	"net_profit",
	"net_profit_pct",
	"labour_pct",
	"overhead_pct",
	"ops_supplies_pct",
	"avg_spend_per_cover",
	"break_even_revenue",
	"data_completeness_pct",
	"generated_at",
}

// LatestForPeriod returns the freshest row for one natural key, defending the
// duplicate-row degraded mode by taking max(generated_at).
func (s *Service) LatestForPeriod(ctx context.Context, orgID snowflake.ID, periodStart, periodEnd time.Time, periodType string) (*domain.FinancialSnapshot, error) {
	var rows []domain.FinancialSnapshot
	if err := s.db.WithContext(ctx).
		Where("org_id = ? AND period_start = ? AND period_end = ? AND period_type = ?",
			orgID, periodStart, periodEnd, periodType).
		Order("generated_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Latest returns the most recently generated snapshot for an org, or nil.
func (s *Service) Latest(ctx context.Context, orgID snowflake.ID) (*domain.FinancialSnapshot, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	var rows []domain.FinancialSnapshot
	if err := s.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("generated_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func mergeMetric(direct, imported decimal.Decimal) decimal.Decimal {
	if !direct.IsZero() {
		return direct
	}
	if !imported.IsZero() {
		return imported
	}
	return decimal.Zero
}

func pctOf(part, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return part.Div(revenue).Mul(hundred)
}

// breakEven is fixed costs over the contribution margin ratio. A margin at or
// below zero has no finite break-even and reports as zero.
func breakEven(grossProfit, revenue, overhead, labourTotal, opsSupplies decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	ratio := grossProfit.Div(revenue)
	if ratio.Sign() <= 0 {
		return decimal.Zero
	}
	fixed := overhead.Add(labourTotal).Add(opsSupplies)
	return fixed.Div(ratio)
}

// completeness counts the six primary cost-centre metrics that carry data.
// It is not a statistical confidence measure.
func completeness(metrics ...decimal.Decimal) decimal.Decimal {
	present := 0
	for _, m := range metrics {
		if !m.IsZero() {
			present++
		}
	}
	return decimal.NewFromInt(int64(present * 100)).Div(decimal.NewFromInt(int64(len(metrics))))
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
