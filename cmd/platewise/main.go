package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/costwatch"
	"github.com/platewise/platewise/internal/migration"
	"github.com/platewise/platewise/internal/modulehealth"
	"github.com/platewise/platewise/internal/observability"
	"github.com/platewise/platewise/internal/organization"
	"github.com/platewise/platewise/internal/reactor"
	"github.com/platewise/platewise/internal/roster"
	"github.com/platewise/platewise/internal/scheduler"
	"github.com/platewise/platewise/internal/server"
	"github.com/platewise/platewise/internal/snapshot"
	"github.com/platewise/platewise/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional domains
		organization.Module,
		snapshot.Module,
		modulehealth.Module,
		reactor.Module,
		roster.Module,
		costwatch.Module,

		migration.Module,
		scheduler.Module,
		server.Module,
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
