package pipeline

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"github.com/smallbiznis/salescloser/internal/pipeline/repository"
	"github.com/smallbiznis/salescloser/internal/pipeline/service"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pipeline.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(newQuoteSyncer),
)

// StartupSync reconciles every quote when the application starts, so quotes
// created before the board existed get their deals.
var StartupSync = fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, svc domain.Service, log *zap.Logger) {
	if !cfg.SyncOnStartup {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := svc.SyncAll(ctx); err != nil {
				log.Error("startup pipeline sync failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
})

// quoteSyncer lets the quote service drive the board without importing it.
type quoteSyncer struct {
	svc domain.Service
	cfg config.Config
}

func newQuoteSyncer(svc domain.Service, cfg config.Config) quotedomain.PipelineSyncer {
	return &quoteSyncer{svc: svc, cfg: cfg}
}

func (q *quoteSyncer) SyncQuote(ctx context.Context, quoteID snowflake.ID) error {
	_, err := q.svc.SyncQuote(ctx, quoteID)
	return err
}

func (q *quoteSyncer) ReleaseQuote(ctx context.Context, quoteID snowflake.ID) error {
	_, err := q.svc.ReleaseQuote(ctx, quoteID, q.cfg.QuoteDeletePolicy)
	return err
}
