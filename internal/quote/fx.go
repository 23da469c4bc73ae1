package quote

import (
	"context"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	podomain "github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	"github.com/smallbiznis/salescloser/internal/quote/domain"
	"github.com/smallbiznis/salescloser/internal/quote/repository"
	"github.com/smallbiznis/salescloser/internal/quote/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(
		NewPipelineSource,
		NewLineSource,
		newHomeJurisdiction,
	),
)

// Reader exposes stored quotes to the board and to purchasing.
type Reader struct {
	repo domain.Repository
}

func NewPipelineSource(repo domain.Repository) pipelinedomain.QuoteSource {
	return &Reader{repo: repo}
}

func NewLineSource(repo domain.Repository) podomain.QuoteLineSource {
	return &Reader{repo: repo}
}

func (r *Reader) QuoteSnapshot(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pipelinedomain.QuoteSnapshot, error) {
	q, err := r.repo.FindByID(ctx, db, id)
	if err != nil || q == nil {
		return nil, err
	}
	snap := snapshot(*q)
	return &snap, nil
}

// QuoteSnapshots lists every quote oldest first, so deals are appended in
// the order their quotes were created.
func (r *Reader) QuoteSnapshots(ctx context.Context, db *gorm.DB) ([]pipelinedomain.QuoteSnapshot, error) {
	quotes, err := r.repo.List(ctx, db, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]pipelinedomain.QuoteSnapshot, len(quotes))
	for i, q := range quotes {
		out[len(quotes)-1-i] = snapshot(q)
	}
	return out, nil
}

func (r *Reader) QuoteLines(ctx context.Context, db *gorm.DB) ([]podomain.QuoteLineRef, error) {
	quotes, err := r.repo.List(ctx, db, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	var out []podomain.QuoteLineRef
	for _, q := range quotes {
		for _, l := range q.Lines {
			out = append(out, podomain.QuoteLineRef{
				QuoteID:     q.ID,
				QuoteNumber: q.Number,
				ClientName:  q.ClientName,
				LineID:      l.ID,
				Category:    l.Category,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
			})
		}
	}
	return out, nil
}

func snapshot(q domain.Quote) pipelinedomain.QuoteSnapshot {
	return pipelinedomain.QuoteSnapshot{
		ID:         q.ID,
		Number:     q.Number,
		ClientName: q.ClientName,
		Status:     string(q.Status),
		Total:      q.Total,
	}
}

type homeJurisdiction struct {
	company companydomain.Service
}

func newHomeJurisdiction(company companydomain.Service) domain.HomeJurisdiction {
	return &homeJurisdiction{company: company}
}

func (h *homeJurisdiction) HomeJurisdiction(ctx context.Context) (string, error) {
	settings, err := h.company.Get(ctx)
	if err != nil {
		return "", err
	}
	return settings.HomeJurisdiction, nil
}
