package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/backup"
	backupdomain "github.com/smallbiznis/salescloser/internal/backup/domain"
	"github.com/smallbiznis/salescloser/internal/batchmetrics"
	"github.com/smallbiznis/salescloser/internal/client"
	clientdomain "github.com/smallbiznis/salescloser/internal/client/domain"
	"github.com/smallbiznis/salescloser/internal/clock"
	"github.com/smallbiznis/salescloser/internal/company"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/smallbiznis/salescloser/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/salescloser/internal/dashboard/domain"
	"github.com/smallbiznis/salescloser/internal/migration"
	"github.com/smallbiznis/salescloser/internal/observability"
	obslogger "github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/pipeline"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"github.com/smallbiznis/salescloser/internal/purchaseorder"
	podomain "github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	"github.com/smallbiznis/salescloser/internal/quote"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"github.com/smallbiznis/salescloser/internal/tax"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"github.com/smallbiznis/salescloser/pkg/db"
	"github.com/smallbiznis/salescloser/pkg/telemetry/correlation"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const startTimeout = 30 * time.Second

// services is everything a command may touch.
type services struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	Tax       taxdomain.Engine
	Company   companydomain.Service
	Quotes    quotedomain.Service
	Clients   clientdomain.Service
	Pipeline  pipelinedomain.Service
	POs       podomain.Service
	Dashboard dashboarddomain.Service
	Backup    backupdomain.Service
	Batch     *batchmetrics.Recorder
}

type runOptions struct {
	// skipStartupSync leaves the board alone while the app starts, for
	// commands that reconcile it themselves.
	skipStartupSync bool
}

func appOptions(opts runOptions) []fx.Option {
	options := []fx.Option{
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		batchmetrics.Module,

		tax.Module,
		company.Module,
		client.Module,
		quote.Module,
		pipeline.Module,
		purchaseorder.Module,
		dashboard.Module,
		backup.Module,
	}
	if !opts.skipStartupSync {
		options = append(options, pipeline.StartupSync)
	}
	return options
}

// RegisterSnowflake builds the id generator for the configured node.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}

// run starts an application for one command, hands its services to fn and
// shuts it down again. Batch metrics are pushed whatever fn returns.
func run(cmd *cobra.Command, opts runOptions, fn func(ctx context.Context, s services) error) error {
	var s services
	app := fx.New(
		append(appOptions(opts), fx.Invoke(func(in services) { s = in }))...,
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cid := correlation.Ensure(cmd.Context())
	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	name := cmd.CommandPath()
	log := obslogger.WithContext(ctx, s.Log).With(zap.String("command", name))
	log.Debug("command started", zap.String("correlation_id", cid))

	started := time.Now()
	err := fn(ctx, s)
	s.Batch.ObserveRun(name, time.Since(started), err)
	s.Batch.Push(ctx)

	if err != nil {
		log.Debug("command failed", zap.Error(err))
	}
	return err
}
