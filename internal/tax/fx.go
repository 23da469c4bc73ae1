package tax

import (
	"github.com/smallbiznis/salescloser/internal/tax/domain"
	"github.com/smallbiznis/salescloser/internal/tax/service"
	"github.com/smallbiznis/salescloser/internal/tax/table"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(table.NewHolder),
	fx.Provide(func(h *table.Holder) domain.TableSource { return h }),
	fx.Provide(service.NewEngine),
)
