package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise/internal/config"
	costwatchservice "github.com/platewise/platewise/internal/costwatch/service"
	healthservice "github.com/platewise/platewise/internal/modulehealth/service"
	obslogger "github.com/platewise/platewise/internal/observability/logger"
	orgrepository "github.com/platewise/platewise/internal/organization/repository"
	reactorservice "github.com/platewise/platewise/internal/reactor/service"
	rosterservice "github.com/platewise/platewise/internal/roster/service"
	snapshotservice "github.com/platewise/platewise/internal/snapshot/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	orgs         *orgrepository.Repository
	snapshotSvc  *snapshotservice.Service
	healthSvc    *healthservice.Service
	reactorSvc   *reactorservice.Service
	rosterSvc    *rosterservice.Assessor
	costwatchSvc *costwatchservice.Detector
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Orgs         *orgrepository.Repository
	SnapshotSvc  *snapshotservice.Service
	HealthSvc    *healthservice.Service
	ReactorSvc   *reactorservice.Service
	RosterSvc    *rosterservice.Assessor
	CostwatchSvc *costwatchservice.Detector
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		orgs:         p.Orgs,
		snapshotSvc:  p.SnapshotSvc,
		healthSvc:    p.HealthSvc,
		reactorSvc:   p.ReactorSvc,
		rosterSvc:    p.RosterSvc,
		costwatchSvc: p.CostwatchSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	orgs := api.Group("/orgs/:org_id")
	{
		// -------- Financial Snapshots --------
		orgs.POST("/snapshots/generate", s.GenerateSnapshot)
		orgs.GET("/snapshots/latest", s.GetLatestSnapshot)

		// -------- Module Health --------
		orgs.GET("/health", s.GetModuleHealth)

		// -------- Alerts --------
		orgs.GET("/alerts", s.ListAlerts)

		// -------- Roster Compliance --------
		orgs.POST("/roster/assess", s.AssessRoster)

		// -------- Cost Anomalies --------
		orgs.POST("/costwatch/scan", s.ScanCosts)
	}
}
