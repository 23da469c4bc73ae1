package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salescloser/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const taxPlaces = 2

type Params struct {
	fx.In

	Log     *zap.Logger
	Table   taxdomain.TableSource
	Metrics *metrics.Metrics `optional:"true"`
}

type Engine struct {
	log     *zap.Logger
	table   taxdomain.TableSource
	metrics *metrics.Metrics
}

func NewEngine(p Params) taxdomain.Engine {
	return &Engine{
		log:     p.Log.Named("tax.engine"),
		table:   p.Table,
		metrics: p.Metrics,
	}
}

func (e *Engine) Compute(ctx context.Context, code string, category taxdomain.Category, amount decimal.Decimal) taxdomain.Result {
	result := Compute(e.table.Get(), code, category, amount)
	e.metrics.RecordTaxLookup(ctx, string(result.Outcome))
	if !result.Known() {
		e.log.Debug("tax fell back to zero",
			zap.String("jurisdiction", code),
			zap.String("category", string(category)),
			zap.String("outcome", string(result.Outcome)),
		)
	}
	return result
}

func (e *Engine) Jurisdiction(code string) (taxdomain.Jurisdiction, bool) {
	return e.table.Get().Lookup(code)
}

func (e *Engine) Jurisdictions() []taxdomain.Jurisdiction {
	return e.table.Get().All()
}

func (e *Engine) Version() string {
	return e.table.Get().Version()
}

// Compute applies the table's taxability rules to amount. It never fails:
// an unknown jurisdiction or category yields zero tax tagged with its outcome.
// Rounding is half away from zero to the cent.
func Compute(table *taxdomain.Table, code string, category taxdomain.Category, amount decimal.Decimal) taxdomain.Result {
	j, ok := table.Lookup(code)
	if !ok {
		return zeroResult(taxdomain.OutcomeUnknownJurisdiction)
	}

	var taxable bool
	switch category {
	case taxdomain.CategoryProduct, taxdomain.CategoryService:
		taxable = j.CombinedRate.IsPositive()
	case taxdomain.CategoryFreight:
		taxable = j.FreightTaxable
	case taxdomain.CategoryLabor:
		taxable = j.LaborTaxable
	default:
		return zeroResult(taxdomain.OutcomeUnknownCategory)
	}

	rate := decimal.Zero
	if taxable {
		rate = j.CombinedRate
	}

	return taxdomain.Result{
		TaxAmount: amount.Mul(rate).Round(taxPlaces),
		TaxRate:   rate,
		Taxable:   taxable,
		Outcome:   taxdomain.OutcomeComputed,
	}
}

func zeroResult(outcome taxdomain.Outcome) taxdomain.Result {
	return taxdomain.Result{
		TaxAmount: decimal.Zero,
		TaxRate:   decimal.Zero,
		Taxable:   false,
		Outcome:   outcome,
	}
}
