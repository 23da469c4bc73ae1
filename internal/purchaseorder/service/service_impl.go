package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/clock"
	obslogger "github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	"github.com/smallbiznis/salescloser/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const numberAttempts = 3

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Lines domain.QuoteLineSource
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	lines domain.QuoteLineSource
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("purchaseorder.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		lines: p.Lines,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.PurchaseOrder, error) {
	vendor := strings.TrimSpace(req.Vendor)
	if vendor == "" {
		return domain.PurchaseOrder{}, domain.ErrInvalidVendor
	}
	if !req.Quantity.IsPositive() {
		return domain.PurchaseOrder{}, domain.ErrInvalidQuantity
	}
	if req.UnitCost.IsNegative() {
		return domain.PurchaseOrder{}, domain.ErrInvalidCost
	}
	status := req.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if !status.Valid() {
		return domain.PurchaseOrder{}, domain.ErrInvalidStatus
	}

	now := s.clock.Now()
	po := domain.PurchaseOrder{
		ID:            s.genID.Generate(),
		QuoteID:       req.QuoteID,
		LineID:        req.LineID,
		Vendor:        vendor,
		VendorContact: strings.TrimSpace(req.VendorContact),
		ShipToAddress: strings.TrimSpace(req.ShipToAddress),
		Description:   strings.TrimSpace(req.Description),
		Quantity:      req.Quantity,
		UnitCost:      req.UnitCost,
		Status:        status,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if po.QuoteID == nil {
		po.LineID = nil
	}
	if status != domain.StatusDraft {
		po.IssuedAt = &now
	}

	err := db.RetryOnDuplicate(numberAttempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if po.LineID != nil {
				if err := s.ensureLine(ctx, tx, *po.QuoteID, *po.LineID); err != nil {
					return err
				}
			}
			seq, err := s.repo.NextSequence(ctx, tx)
			if err != nil {
				return err
			}
			po.Sequence = seq
			po.Number = domain.FormatNumber(seq)
			return s.repo.Insert(ctx, tx, &po)
		})
	})
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("purchase order created",
		zap.String("po_id", po.ID.String()),
		zap.String("number", po.Number),
		zap.String("vendor", po.Vendor),
	)
	return po, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.PurchaseOrder, error) {
	return s.mutate(ctx, req.ID, func(po *domain.PurchaseOrder) error {
		if req.Vendor != nil {
			vendor := strings.TrimSpace(*req.Vendor)
			if vendor == "" {
				return domain.ErrInvalidVendor
			}
			po.Vendor = vendor
		}
		if req.VendorContact != nil {
			po.VendorContact = strings.TrimSpace(*req.VendorContact)
		}
		if req.ShipToAddress != nil {
			po.ShipToAddress = strings.TrimSpace(*req.ShipToAddress)
		}
		if req.Description != nil {
			po.Description = strings.TrimSpace(*req.Description)
		}
		if req.Quantity != nil {
			if !req.Quantity.IsPositive() {
				return domain.ErrInvalidQuantity
			}
			po.Quantity = *req.Quantity
		}
		if req.UnitCost != nil {
			if req.UnitCost.IsNegative() {
				return domain.ErrInvalidCost
			}
			po.UnitCost = *req.UnitCost
		}
		if req.Notes != nil {
			po.Notes = strings.TrimSpace(*req.Notes)
		}
		return nil
	})
}

func (s *Service) Issue(ctx context.Context, id snowflake.ID) (domain.PurchaseOrder, error) {
	return s.mutate(ctx, id, func(po *domain.PurchaseOrder) error {
		if po.Status != domain.StatusDraft {
			return nil
		}
		now := s.clock.Now()
		po.Status = domain.StatusIssued
		po.IssuedAt = &now
		return nil
	})
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status domain.Status) (domain.PurchaseOrder, error) {
	if !status.Valid() {
		return domain.PurchaseOrder{}, domain.ErrInvalidStatus
	}
	return s.mutate(ctx, id, func(po *domain.PurchaseOrder) error {
		po.Status = status
		if status != domain.StatusDraft && po.IssuedAt == nil {
			now := s.clock.Now()
			po.IssuedAt = &now
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.PurchaseOrder, error) {
	po, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	if po == nil {
		return domain.PurchaseOrder{}, domain.ErrNotFound
	}
	return *po, nil
}

// List returns orders with their margins. Search matches the PO number,
// vendor, description, quote number and client name.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.LineMargin, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	margins, err := s.evaluate(ctx, filter.Status)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return margins, nil
	}
	out := make([]domain.LineMargin, 0, len(margins))
	for _, m := range margins {
		if matches(m, search) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) MarginReport(ctx context.Context) (domain.MarginReport, error) {
	margins, err := s.evaluate(ctx, "")
	if err != nil {
		return domain.MarginReport{}, err
	}
	return domain.MarginReport{
		Margins:    margins,
		ByQuote:    domain.ByQuote(margins),
		Summary:    domain.Summarize(margins),
		ByCategory: domain.CostByCategory(margins),
	}, nil
}

func (s *Service) evaluate(ctx context.Context, status domain.Status) ([]domain.LineMargin, error) {
	orders, err := s.repo.List(ctx, s.db, status)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines.QuoteLines(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return domain.Evaluate(orders, lines), nil
}

func (s *Service) mutate(ctx context.Context, id snowflake.ID, apply func(po *domain.PurchaseOrder) error) (domain.PurchaseOrder, error) {
	if id == 0 {
		return domain.PurchaseOrder{}, domain.ErrInvalidID
	}

	var po domain.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		po = *current
		if err := apply(&po); err != nil {
			return err
		}
		po.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, &po)
	})
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("purchase order updated",
		zap.String("po_id", po.ID.String()),
		zap.String("status", string(po.Status)),
	)
	return po, nil
}

func (s *Service) ensureLine(ctx context.Context, tx *gorm.DB, quoteID, lineID snowflake.ID) error {
	lines, err := s.lines.QuoteLines(ctx, tx)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.QuoteID == quoteID && l.LineID == lineID {
			return nil
		}
	}
	return domain.ErrLineNotFound
}

func matches(m domain.LineMargin, search string) bool {
	fields := []string{
		m.PurchaseOrder.Number,
		m.PurchaseOrder.Vendor,
		m.PurchaseOrder.Description,
		m.QuoteNumber,
		m.ClientName,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
