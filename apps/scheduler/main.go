package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/migration"
	"github.com/platewise/platewise/internal/modulehealth"
	"github.com/platewise/platewise/internal/observability"
	"github.com/platewise/platewise/internal/organization"
	"github.com/platewise/platewise/internal/reactor"
	"github.com/platewise/platewise/internal/scheduler"
	"github.com/platewise/platewise/internal/snapshot"
	"github.com/platewise/platewise/pkg/db"
	"go.uber.org/fx"
)

// Headless runner: drives snapshot aggregation and reactor evaluation on an
// interval without serving the HTTP API.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services required by the scheduler
		organization.Module,
		snapshot.Module,
		modulehealth.Module,
		reactor.Module,

		migration.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
