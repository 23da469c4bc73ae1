package db

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/smallbiznis/salescloser/internal/observability"
	obslogger "github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("db",
	fx.Provide(Open),
)

type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    config.Config
	ObsCfg observability.Config
	Log    *zap.Logger
}

// Open connects to the configured database and applies pool settings.
func Open(p Params) (*gorm.DB, error) {
	dialector, err := Dialect(p.Cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(p.Log, p.ObsCfg.Debug()),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", p.Cfg.DBType, err)
	}

	if p.ObsCfg.OtelEnabled {
		if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(p.Cfg.DBName))); err != nil {
			return nil, fmt.Errorf("register otelgorm: %w", err)
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}

	maxOpen := p.Cfg.DBMaxOpenConn
	if p.Cfg.DBType == TypeSQLite || p.Cfg.DBType == "" {
		// A single writer avoids SQLITE_BUSY on the local file.
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(p.Cfg.DBMaxIdleConn)
	sqlDB.SetConnMaxLifetime(time.Duration(p.Cfg.DBConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(p.Cfg.DBConnMaxIdleTime) * time.Second)

	if p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return sqlDB.Close()
			},
		})
	}

	p.Log.Debug("database opened", zap.String("type", p.Cfg.DBType))
	return conn, nil
}
