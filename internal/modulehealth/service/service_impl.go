package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/modulehealth/domain"
	orgdomain "github.com/platewise/platewise/internal/organization/domain"
	orgrepository "github.com/platewise/platewise/internal/organization/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scorer produces Module Health Records for one org. The two implementations
// differ only in where the freshness signal comes from; their output shape is
// identical so the reactor and UI treat them uniformly.
type Scorer interface {
	Score(ctx context.Context, orgID snowflake.ID) ([]domain.ModuleHealthRecord, error)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Orgs  *orgrepository.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	orgs  *orgrepository.Repository
}

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("modulehealth"),
		clock: p.Clock,
		orgs:  p.Orgs,
	}
}

// ForOrg selects the scoring strategy from the org's operating mode.
func (s *Service) ForOrg(ctx context.Context, orgID snowflake.ID) (Scorer, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.OperatingMode == orgdomain.OperatingModeIntegrated {
		return &syncScorer{db: s.db, log: s.log, clock: s.clock}, nil
	}
	return &tableScorer{db: s.db, log: s.log, clock: s.clock}, nil
}

// ScoreOrg scores an org with its configured strategy and persists the
// records for downstream readers.
func (s *Service) ScoreOrg(ctx context.Context, orgID snowflake.ID) ([]domain.ModuleHealthRecord, error) {
	scorer, err := s.ForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	records, err := scorer.Score(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, records); err != nil {
		s.log.Warn("failed to persist module health records",
			zap.String("org_id", orgID.String()), zap.Error(err))
	}
	return records, nil
}

func (s *Service) persist(ctx context.Context, records []domain.ModuleHealthRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}, {Name: "module_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"label", "score", "status", "last_data_at", "record_count", "updated_at",
		}),
	}).Create(&records).Error
}

type syncScorer struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func (sc *syncScorer) Score(ctx context.Context, orgID snowflake.ID) ([]domain.ModuleHealthRecord, error) {
	var signals []domain.ModuleSyncSignal
	if err := sc.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Find(&signals).Error; err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.ModuleSyncSignal, len(signals))
	for _, sig := range signals {
		byKey[sig.ModuleKey] = sig
	}

	now := sc.clock.Now()
	records := make([]domain.ModuleHealthRecord, 0, len(domain.SyncModules))
	for _, mod := range domain.SyncModules {
		sig := byKey[mod.Key]
		status, score := domain.ScoreFor(sig.LastSyncedAt, now)
		records = append(records, domain.ModuleHealthRecord{
			OrgID:       orgID,
			ModuleKey:   mod.Key,
			Label:       mod.Label,
			Score:       score,
			Status:      status,
			LastDataAt:  sig.LastSyncedAt,
			RecordCount: sig.RecordCount,
		})
	}
	return records, nil
}

type tableScorer struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func (sc *tableScorer) Score(ctx context.Context, orgID snowflake.ID) ([]domain.ModuleHealthRecord, error) {
	now := sc.clock.Now()
	records := make([]domain.ModuleHealthRecord, 0, len(domain.TableModules))
	for _, mod := range domain.TableModules {
		var row struct {
			RecordCount int64      `gorm:"column:record_count"`
			LastAt      *time.Time `gorm:"column:last_at"`
		}
		// Table and column names come from the fixed registry, never callers.
		query := fmt.Sprintf(
			`SELECT COUNT(*) AS record_count, MAX(%s) AS last_at FROM %s WHERE org_id = ?`,
			mod.TimeColumn, mod.Table,
		)
		if err := sc.db.WithContext(ctx).Raw(query, orgID).Scan(&row).Error; err != nil {
			sc.log.Warn("module table query failed, scoring as no data",
				zap.String("module", mod.Key), zap.Error(err))
			row.RecordCount = 0
			row.LastAt = nil
		}

		status, score := domain.ScoreFor(row.LastAt, now)
		records = append(records, domain.ModuleHealthRecord{
			OrgID:       orgID,
			ModuleKey:   mod.Key,
			Label:       mod.Label,
			Score:       score,
			Status:      status,
			LastDataAt:  row.LastAt,
			RecordCount: row.RecordCount,
		})
	}
	return records, nil
}

// Overall is the arithmetic mean of per-module scores, rounded to nearest
// integer; zero when no modules are tracked.
func Overall(records []domain.ModuleHealthRecord) int {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.Score
	}
	return int(math.Round(float64(sum) / float64(len(records))))
}

const stalestLimit = 3

// Stalest returns the lowest-scoring modules, ascending, at most three.
func Stalest(records []domain.ModuleHealthRecord) []domain.ModuleHealthRecord {
	out := make([]domain.ModuleHealthRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if len(out) > stalestLimit {
		out = out[:stalestLimit]
	}
	return out
}

// RecommendationTemplates phrases one sentence per concerning status. Modules
// in better standing produce no recommendation.
var RecommendationTemplates = map[domain.Status]string{
	domain.StatusNoData:    "%s has no data yet. Connect the module or record your first entry.",
	domain.StatusVeryStale: "%s has not seen new data in a long time. Check the integration or resume recording.",
	domain.StatusStale:     "%s data is going stale. Review recent activity.",
}

// Recommendations generates advice for the stalest modules.
func Recommendations(records []domain.ModuleHealthRecord) []string {
	out := make([]string, 0, stalestLimit)
	for _, r := range Stalest(records) {
		template, ok := RecommendationTemplates[r.Status]
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf(template, r.Label))
	}
	return out
}
