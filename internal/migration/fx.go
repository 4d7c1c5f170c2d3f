package migration

import (
	"github.com/mesterwork/mesterwork/internal/config"
	"github.com/mesterwork/mesterwork/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Schema migrations are written for postgres; sqlite databases are
		// created per-test with explicit DDL instead.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}
		return seed.EnsureGlobalPriceList(conn)
	}),
)
