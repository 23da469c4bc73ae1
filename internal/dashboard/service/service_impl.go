package service

import (
	"context"

	clientdomain "github.com/smallbiznis/salescloser/internal/client/domain"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	"github.com/smallbiznis/salescloser/internal/dashboard/domain"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Quotes   quotedomain.Service
	Clients  clientdomain.Service
	Pipeline pipelinedomain.Service
	Company  companydomain.Service
}

type Service struct {
	log      *zap.Logger
	quotes   quotedomain.Service
	clients  clientdomain.Service
	pipeline pipelinedomain.Service
	company  companydomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("dashboard.service"),
		quotes:   p.Quotes,
		clients:  p.Clients,
		pipeline: p.Pipeline,
		company:  p.Company,
	}
}

func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	quotes, err := s.quotes.List(ctx, quotedomain.ListFilter{})
	if err != nil {
		return domain.Snapshot{}, err
	}
	clients, err := s.clients.Count(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	board, err := s.pipeline.Board(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	settings, err := s.company.Get(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Summarize(quotes, clients, board)
	snap.CompanyName = settings.Name
	return snap, nil
}
