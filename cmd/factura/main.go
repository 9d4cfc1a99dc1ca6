package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/factura/internal/clock"
	"github.com/smallbiznis/factura/internal/config"
	"github.com/smallbiznis/factura/internal/events"
	"github.com/smallbiznis/factura/internal/idempotency"
	"github.com/smallbiznis/factura/internal/invoice"
	"github.com/smallbiznis/factura/internal/migration"
	"github.com/smallbiznis/factura/internal/observability"
	"github.com/smallbiznis/factura/internal/revenue"
	"github.com/smallbiznis/factura/internal/scheduler"
	"github.com/smallbiznis/factura/internal/server"
	"github.com/smallbiznis/factura/pkg/db"
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
		migration.Module,

		// Functional domains
		events.Module,
		idempotency.Module,
		invoice.Module,
		revenue.Module,
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
