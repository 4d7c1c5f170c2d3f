package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/billing"
	"github.com/mesterwork/mesterwork/internal/clock"
	"github.com/mesterwork/mesterwork/internal/config"
	"github.com/mesterwork/mesterwork/internal/diary"
	"github.com/mesterwork/mesterwork/internal/logger"
	"github.com/mesterwork/mesterwork/internal/marketprice"
	"github.com/mesterwork/mesterwork/internal/migration"
	"github.com/mesterwork/mesterwork/internal/observability"
	"github.com/mesterwork/mesterwork/internal/pricelist"
	pdfprovider "github.com/mesterwork/mesterwork/internal/providers/pdf"
	"github.com/mesterwork/mesterwork/internal/registry"
	"github.com/mesterwork/mesterwork/internal/scheduler"
	"github.com/mesterwork/mesterwork/internal/server"
	"github.com/mesterwork/mesterwork/internal/work"
	"github.com/mesterwork/mesterwork/internal/workforce"
	"github.com/mesterwork/mesterwork/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		observability.Module,

		// Functional domains
		work.Module,
		workforce.Module,
		registry.Module,
		diary.Module,
		billing.Module,
		pricelist.Module,
		marketprice.Module,
		pdfprovider.Module,

		// Entry points
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
