package migration

import (
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/astauriabidco-maker/fle-expert/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres targets (sqlite in local dev) get the schema via
			// AutoMigrate; the SQL files stay the source of truth for
			// production.
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultOrg(conn)
	}),
)
