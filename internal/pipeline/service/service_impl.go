package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/clock"
	"github.com/smallbiznis/salescloser/internal/config"
	obslogger "github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/observability/metrics"
	"github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/smallbiznis/salescloser/internal/pipeline")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Quotes  domain.QuoteSource
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	quotes  domain.QuoteSource
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("pipeline.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		quotes:  p.Quotes,
		metrics: p.Metrics,
	}
}

func (s *Service) Board(ctx context.Context) (domain.Board, error) {
	return s.loadBoard(ctx, s.db)
}

func (s *Service) AddDeal(ctx context.Context, req domain.AddDealRequest) (domain.Deal, error) {
	if !req.Stage.Valid() {
		return domain.Deal{}, domain.ErrInvalidStage
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Deal{}, domain.ErrInvalidName
	}
	if req.Value.IsNegative() {
		return domain.Deal{}, domain.ErrInvalidValue
	}

	var deal domain.Deal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := s.loadBoard(ctx, tx)
		if err != nil {
			return err
		}
		_, deal = board.Append(req.Stage, domain.Deal{
			ID:        s.genID.Generate(),
			Name:      name,
			Company:   strings.TrimSpace(req.Company),
			Value:     req.Value,
			Note:      strings.TrimSpace(req.Note),
			CreatedAt: s.clock.Now(),
		})
		return s.repo.Insert(ctx, tx, &deal)
	})
	if err != nil {
		return domain.Deal{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("deal added",
		zap.String("deal_id", deal.ID.String()),
		zap.String("stage", string(deal.Stage)),
	)
	return deal, nil
}

func (s *Service) UpdateDeal(ctx context.Context, req domain.UpdateDealRequest) (domain.Deal, error) {
	if req.ID == 0 {
		return domain.Deal{}, domain.ErrInvalidID
	}

	deal, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Deal{}, err
	}
	if deal == nil {
		return domain.Deal{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Deal{}, domain.ErrInvalidName
		}
		deal.Name = name
	}
	if req.Company != nil {
		deal.Company = strings.TrimSpace(*req.Company)
	}
	if req.Value != nil {
		if req.Value.IsNegative() {
			return domain.Deal{}, domain.ErrInvalidValue
		}
		deal.Value = *req.Value
	}
	if req.Note != nil {
		deal.Note = strings.TrimSpace(*req.Note)
	}

	if err := s.repo.UpdateDetails(ctx, s.db, deal); err != nil {
		return domain.Deal{}, err
	}
	return *deal, nil
}

func (s *Service) MoveDeal(ctx context.Context, req domain.MoveDealRequest) (domain.Deal, error) {
	var deal domain.Deal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := s.loadBoard(ctx, tx)
		if err != nil {
			return err
		}
		_, deal, err = domain.Move(board, req.ID, req.From, req.To, s.clock.Now())
		if err != nil {
			return err
		}
		if req.From == req.To {
			return nil
		}
		return s.repo.UpdatePlacement(ctx, tx, &deal)
	})
	if err != nil {
		return domain.Deal{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("deal moved",
		zap.String("deal_id", deal.ID.String()),
		zap.String("from", string(req.From)),
		zap.String("to", string(req.To)),
	)
	return deal, nil
}

func (s *Service) DeleteDeal(ctx context.Context, id snowflake.ID, stage domain.StageID) error {
	if !stage.Valid() {
		return domain.ErrInvalidStage
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := s.loadBoard(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := board.Find(id, stage); !ok {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) SyncQuote(ctx context.Context, quoteID snowflake.ID) (domain.SyncResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline.sync_quote",
		trace.WithAttributes(attribute.String("quote_id", quoteID.String())))
	defer span.End()

	var result domain.SyncResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.quotes.QuoteSnapshot(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if q == nil {
			result = domain.SyncResult{Action: domain.SyncActionNone, QuoteID: quoteID}
			return nil
		}

		board, err := s.loadBoard(ctx, tx)
		if err != nil {
			return err
		}
		_, result = domain.Reconcile(board, *q, s.clock.Now(), s.genID.Generate)
		return s.persist(ctx, tx, result)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.SyncResult{}, err
	}

	span.SetAttributes(attribute.String("action", string(result.Action)))
	s.metrics.RecordPipelineSync(ctx, string(result.Action))
	if result.Changed() {
		obslogger.WithContext(ctx, s.log).Info("quote synced to pipeline",
			zap.String("quote_id", quoteID.String()),
			zap.String("action", string(result.Action)),
			zap.String("deal_id", result.Deal.ID.String()),
			zap.String("to", string(result.To)),
		)
	}
	return result, nil
}

func (s *Service) SyncAll(ctx context.Context) (domain.SyncSummary, error) {
	ctx, span := tracer.Start(ctx, "pipeline.sync_all")
	defer span.End()
	start := time.Now()

	var (
		summary domain.SyncSummary
		results []domain.SyncResult
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotes, err := s.quotes.QuoteSnapshots(ctx, tx)
		if err != nil {
			return err
		}
		board, err := s.loadBoard(ctx, tx)
		if err != nil {
			return err
		}

		var next domain.Board
		next, results = domain.ReconcileAll(board, quotes, s.clock.Now(), s.genID.Generate)
		for _, r := range results {
			if err := s.persist(ctx, tx, r); err != nil {
				return err
			}
			summary.Add(r)
		}
		summary.Quotes = len(quotes)
		summary.Violations = next.LinkViolations()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.SyncSummary{}, err
	}

	for _, r := range results {
		s.metrics.RecordPipelineSync(ctx, string(r.Action))
	}
	s.metrics.RecordSyncAllDuration(ctx, time.Since(start))

	log := obslogger.WithContext(ctx, s.log)
	if len(summary.Violations) > 0 {
		log.Warn("quotes linked to more than one deal", zap.Int("count", len(summary.Violations)))
	}
	log.Info("pipeline synchronized",
		zap.Int("quotes", summary.Quotes),
		zap.Int("created", summary.Created),
		zap.Int("moved", summary.Moved),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
	)
	return summary, nil
}

func (s *Service) ReleaseQuote(ctx context.Context, quoteID snowflake.ID, policy config.DeletePolicy) (int, error) {
	log := obslogger.WithContext(ctx, s.log).With(
		zap.String("quote_id", quoteID.String()),
		zap.String("policy", string(policy)),
	)

	switch policy {
	case config.DeletePolicyOrphan:
		log.Info("deal left without quote")
		return 0, nil
	case config.DeletePolicyCascade:
		n, err := s.repo.DeleteByQuote(ctx, s.db, quoteID)
		if err != nil {
			return 0, err
		}
		log.Info("linked deals deleted", zap.Int64("count", n))
		return int(n), nil
	default:
		return 0, domain.ErrInvalidPolicy
	}
}

func (s *Service) loadBoard(ctx context.Context, db *gorm.DB) (domain.Board, error) {
	deals, err := s.repo.List(ctx, db)
	if err != nil {
		return domain.Board{}, err
	}
	return domain.NewBoard(deals), nil
}

func (s *Service) persist(ctx context.Context, tx *gorm.DB, r domain.SyncResult) error {
	switch r.Action {
	case domain.SyncActionCreated:
		deal := r.Deal
		return s.repo.Insert(ctx, tx, &deal)
	case domain.SyncActionMoved, domain.SyncActionUpdated:
		deal := r.Deal
		return s.repo.UpdateSynced(ctx, tx, &deal)
	default:
		return nil
	}
}
