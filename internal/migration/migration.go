package migration

import (
	"github.com/platewise/platewise/internal/config"
	healthdomain "github.com/platewise/platewise/internal/modulehealth/domain"
	organizationdomain "github.com/platewise/platewise/internal/organization/domain"
	reactordomain "github.com/platewise/platewise/internal/reactor/domain"
	snapshotdomain "github.com/platewise/platewise/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run migrates the tables this service owns. Source tables written by the
// product apps (payments, shifts, overhead entries and the like) are managed
// by their owners and are not touched here.
func Run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if !cfg.AutoMigrate {
		return nil
	}

	err := db.AutoMigrate(
		&organizationdomain.Organization{},
		&snapshotdomain.FinancialSnapshot{},
		&snapshotdomain.ImportedMetric{},
		&healthdomain.ModuleHealthRecord{},
		&healthdomain.ModuleSyncSignal{},
		&reactordomain.SafetyAudit{},
		&reactordomain.IssueReport{},
	)
	if err != nil {
		log.Error("auto migration failed", zap.Error(err))
		return err
	}

	log.Info("auto migration completed")
	return nil
}
