package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/clock"
	"github.com/smallbiznis/salescloser/internal/config"
	obslogger "github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/observability/metrics"
	"github.com/smallbiznis/salescloser/internal/quote/domain"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"github.com/smallbiznis/salescloser/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const numberAttempts = 3

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Tax      taxdomain.Engine
	Home     domain.HomeJurisdiction `optional:"true"`
	Clients  domain.ClientDirectory  `optional:"true"`
	Pipeline domain.PipelineSyncer   `optional:"true"`
	Metrics  *metrics.Metrics        `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      config.Config
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	tax      taxdomain.Engine
	home     domain.HomeJurisdiction
	clients  domain.ClientDirectory
	pipeline domain.PipelineSyncer
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("quote.service"),
		cfg:      p.Cfg,
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		tax:      p.Tax,
		home:     p.Home,
		clients:  p.Clients,
		pipeline: p.Pipeline,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.Quote, error) {
	lines, err := s.buildLines(req.Lines, nil)
	if err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{
		ID:          s.genID.Generate(),
		ClientID:    req.ClientID,
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: strings.TrimSpace(req.ClientEmail),
		ClientPhone: strings.TrimSpace(req.ClientPhone),
		Status:      domain.StatusDraft,
		Notes:       strings.TrimSpace(req.Notes),
	}
	if !validEmail(quote.ClientEmail) {
		return domain.Quote{}, domain.ErrInvalidEmail
	}

	jurisdiction := req.Jurisdiction
	if req.ClientID != nil {
		contact, err := s.contact(ctx, *req.ClientID)
		if err != nil {
			return domain.Quote{}, err
		}
		if quote.ClientName == "" {
			quote.ClientName = contact.Name
		}
		if quote.ClientEmail == "" {
			quote.ClientEmail = contact.Email
		}
		if quote.ClientPhone == "" {
			quote.ClientPhone = contact.Phone
		}
		if strings.TrimSpace(jurisdiction) == "" {
			jurisdiction = contact.Jurisdiction
		}
	}
	if quote.Jurisdiction, err = s.resolveJurisdiction(ctx, jurisdiction); err != nil {
		return domain.Quote{}, err
	}

	for i := range lines {
		lines[i].QuoteID = quote.ID
	}
	quote.Lines = lines
	totals := domain.Price(ctx, s.tax, quote.Jurisdiction, quote.Lines)
	totals.Apply(&quote)

	now := s.clock.Now()
	quote.CreatedAt = now
	quote.UpdatedAt = now

	// Numbers come from a forward-only counter; a writer that loses the race
	// retries with a fresh one.
	err = db.RetryOnDuplicate(numberAttempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			seq, err := s.repo.NextSequence(ctx, tx)
			if err != nil {
				return err
			}
			quote.Sequence = seq
			quote.Number = domain.FormatNumber(seq)
			return s.repo.Insert(ctx, tx, &quote)
		})
	})
	if err != nil {
		return domain.Quote{}, err
	}

	s.metrics.RecordQuoteSaved(ctx, "create")
	obslogger.WithContext(ctx, s.log).Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number),
		zap.String("jurisdiction", quote.Jurisdiction),
		zap.Bool("tax_data_available", totals.TaxDataAvailable),
	)
	s.syncPipeline(ctx, quote.ID)
	return quote, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateQuoteRequest) (domain.Quote, error) {
	if req.ID == 0 {
		return domain.Quote{}, domain.ErrInvalidID
	}

	var quote domain.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		quote = *current

		if req.ClientName != nil {
			quote.ClientName = strings.TrimSpace(*req.ClientName)
		}
		if req.ClientEmail != nil {
			email := strings.TrimSpace(*req.ClientEmail)
			if !validEmail(email) {
				return domain.ErrInvalidEmail
			}
			quote.ClientEmail = email
		}
		if req.ClientPhone != nil {
			quote.ClientPhone = strings.TrimSpace(*req.ClientPhone)
		}
		if req.Jurisdiction != nil {
			if quote.Jurisdiction, err = s.resolveJurisdiction(ctx, *req.Jurisdiction); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return domain.ErrInvalidStatus
			}
			quote.Status = *req.Status
		}
		if req.Notes != nil {
			quote.Notes = strings.TrimSpace(*req.Notes)
		}
		if req.Lines != nil {
			lines, err := s.buildLines(*req.Lines, current.Lines)
			if err != nil {
				return err
			}
			for i := range lines {
				lines[i].QuoteID = quote.ID
			}
			quote.Lines = lines
		}

		domain.Price(ctx, s.tax, quote.Jurisdiction, quote.Lines).Apply(&quote)
		quote.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, &quote)
	})
	if err != nil {
		return domain.Quote{}, err
	}

	s.metrics.RecordQuoteSaved(ctx, "update")
	obslogger.WithContext(ctx, s.log).Info("quote updated",
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number),
		zap.String("status", string(quote.Status)),
	)
	s.syncPipeline(ctx, quote.ID)
	return quote, nil
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status domain.Status) (domain.Quote, error) {
	return s.Update(ctx, domain.UpdateQuoteRequest{ID: id, Status: &status})
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}

	var number string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		number = quote.Number
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordQuoteSaved(ctx, "delete")
	log := obslogger.WithContext(ctx, s.log).With(
		zap.String("quote_id", id.String()),
		zap.String("number", number),
	)
	log.Info("quote deleted")
	if s.pipeline != nil {
		if err := s.pipeline.ReleaseQuote(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Quote, error) {
	quote, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *quote, nil
}

func (s *Service) Resolve(ctx context.Context, ref string) (domain.Quote, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Quote{}, domain.ErrInvalidID
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.Get(ctx, snowflake.ID(id))
	}

	quote, err := s.repo.FindByNumber(ctx, s.db, ref)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *quote, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Quote, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Preview(ctx context.Context, req domain.PreviewRequest) (domain.Totals, error) {
	lines, err := s.buildLines(req.Lines, nil)
	if err != nil {
		return domain.Totals{}, err
	}
	jurisdiction, err := s.resolveJurisdiction(ctx, req.Jurisdiction)
	if err != nil {
		return domain.Totals{}, err
	}
	return domain.Price(ctx, s.tax, jurisdiction, lines), nil
}

// buildLines validates inputs into lines. An input ID matching one of the
// existing lines is kept; anything else gets a fresh id.
func (s *Service) buildLines(inputs []domain.LineInput, existing []domain.Line) ([]domain.Line, error) {
	known := make(map[snowflake.ID]bool, len(existing))
	for _, l := range existing {
		known[l.ID] = true
	}

	lines := make([]domain.Line, 0, len(inputs))
	for i, in := range inputs {
		category, ok := taxdomain.ParseCategory(in.Category)
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		if !in.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		id := in.ID
		if !known[id] {
			id = s.genID.Generate()
		}
		delete(known, id)
		lines = append(lines, domain.Line{
			ID:          id,
			Position:    i + 1,
			Category:    category,
			Description: strings.TrimSpace(in.Description),
			Unit:        strings.TrimSpace(in.Unit),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		})
	}
	return lines, nil
}

// resolveJurisdiction falls back to the company home jurisdiction and then
// the configured default. Codes missing from the tax table are kept as given.
func (s *Service) resolveJurisdiction(ctx context.Context, code string) (string, error) {
	if code = taxdomain.NormalizeCode(code); code != "" {
		return code, nil
	}
	if s.home != nil {
		home, err := s.home.HomeJurisdiction(ctx)
		if err != nil {
			return "", err
		}
		if home = taxdomain.NormalizeCode(home); home != "" {
			return home, nil
		}
	}
	return taxdomain.NormalizeCode(s.cfg.DefaultJurisdiction), nil
}

func (s *Service) contact(ctx context.Context, id snowflake.ID) (*domain.ClientContact, error) {
	if s.clients == nil {
		return nil, domain.ErrClientNotFound
	}
	contact, err := s.clients.Contact(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, domain.ErrClientNotFound
	}
	return contact, nil
}

// syncPipeline mirrors the quote onto the board. A failure leaves the quote
// saved; the startup sync repairs the board.
func (s *Service) syncPipeline(ctx context.Context, id snowflake.ID) {
	if s.pipeline == nil {
		return
	}
	if err := s.pipeline.SyncQuote(ctx, id); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("pipeline sync failed",
			zap.String("quote_id", id.String()),
			zap.Error(err),
		)
	}
}

func validEmail(email string) bool {
	return email == "" || strings.Contains(email, "@")
}
