package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/observability/metrics"
	orgrepository "github.com/platewise/platewise/internal/organization/repository"
	reactorservice "github.com/platewise/platewise/internal/reactor/service"
	snapshotdomain "github.com/platewise/platewise/internal/snapshot/domain"
	snapshotservice "github.com/platewise/platewise/internal/snapshot/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Orgs      *orgrepository.Repository
	Snapshots *snapshotservice.Service
	Reactor   *reactorservice.Service
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Config    Config `optional:"true"`
}

// Scheduler periodically drives the daily snapshot aggregation and reactor
// run per active org. The engine entrypoints themselves stay pure
// (org, period) functions; this is just the in-process caller, and external
// schedulers can invoke the same services directly.
type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       Config
	orgs      *orgrepository.Repository
	snapshots *snapshotservice.Service
	reactor   *reactorservice.Service
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Orgs == nil || p.Snapshots == nil || p.Reactor == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		cfg:       p.Config.withDefaults(),
		orgs:      p.Orgs,
		snapshots: p.Snapshots,
		reactor:   p.Reactor,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.cfg.RunInterval))
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch of active orgs. Per-org failures are isolated;
// retrying is left to the next tick.
func (s *Scheduler) RunOnce(ctx context.Context) {
	started := time.Now()
	defer s.metrics.ObserveJob("scheduler_tick", started)

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	ids, err := s.orgs.ListActiveIDs(runCtx, s.cfg.OrgBatchSize)
	if err != nil {
		s.log.Error("failed to list active organizations", zap.Error(err))
		return
	}

	for _, orgID := range ids {
		if runCtx.Err() != nil {
			return
		}
		s.runOrg(runCtx, orgID)
	}
}

func (s *Scheduler) runOrg(ctx context.Context, orgID snowflake.ID) {
	log := s.log.With(zap.String("org_id", orgID.String()))

	today := s.clock.Now().UTC()
	if _, err := s.snapshots.Generate(ctx, snapshotservice.GenerateRequest{
		OrgID:       orgID,
		PeriodStart: today,
		PeriodEnd:   today,
		PeriodType:  snapshotdomain.PeriodTypeDaily,
	}); err != nil {
		log.Warn("snapshot aggregation failed", zap.Error(err))
	}

	alerts, err := s.reactor.Run(ctx, orgID)
	if err != nil {
		log.Warn("reactor run failed", zap.Error(err))
		return
	}
	log.Debug("reactor run completed", zap.Int("alerts", len(alerts)))
}
