package client

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/client/domain"
	"github.com/smallbiznis/salescloser/internal/client/repository"
	"github.com/smallbiznis/salescloser/internal/client/service"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(NewDirectory),
)

type directory struct {
	svc domain.Service
}

// NewDirectory lets quotes copy contact details from a client record.
func NewDirectory(svc domain.Service) quotedomain.ClientDirectory {
	return &directory{svc: svc}
}

func (d *directory) Contact(ctx context.Context, id snowflake.ID) (*quotedomain.ClientContact, error) {
	c, err := d.svc.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quotedomain.ClientContact{
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Jurisdiction: c.Jurisdiction,
	}, nil
}
