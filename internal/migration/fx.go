package migration

import (
	"github.com/smallbiznis/salescloser/internal/company"
	"github.com/smallbiznis/salescloser/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}
		log.Debug("schema up to date", zap.String("type", cfg.DBType))

		return company.EnsureDefaults(conn, cfg.DefaultJurisdiction)
	}),
)
