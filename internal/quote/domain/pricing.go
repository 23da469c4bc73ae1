package domain

import (
	"context"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
)

type PricedLine struct {
	Line     Line             `json:"line"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Tax      taxdomain.Result `json:"tax"`
	Total    decimal.Decimal  `json:"total"`
}

type Totals struct {
	Lines    []PricedLine    `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	// TaxDataAvailable is false when the jurisdiction is not in the table;
	// the tax is then zero and should be shown as unavailable.
	TaxDataAvailable bool `json:"tax_data_available"`
}

// Price computes per-line tax and the quote totals. Tax is computed on each
// line's subtotal and summed, never on the quote subtotal.
func Price(ctx context.Context, engine taxdomain.Engine, jurisdiction string, lines []Line) Totals {
	totals := Totals{
		Lines:            make([]PricedLine, 0, len(lines)),
		Subtotal:         decimal.Zero,
		Tax:              decimal.Zero,
		Total:            decimal.Zero,
		TaxDataAvailable: true,
	}
	if _, ok := engine.Jurisdiction(jurisdiction); !ok {
		totals.TaxDataAvailable = false
	}

	for _, line := range lines {
		subtotal := line.Subtotal()
		tax := engine.Compute(ctx, jurisdiction, line.Category, subtotal)
		total := subtotal.Add(tax.TaxAmount)

		totals.Lines = append(totals.Lines, PricedLine{
			Line:     line,
			Subtotal: subtotal,
			Tax:      tax,
			Total:    total,
		})
		totals.Subtotal = totals.Subtotal.Add(subtotal)
		totals.Tax = totals.Tax.Add(tax.TaxAmount)
	}
	totals.Total = totals.Subtotal.Add(totals.Tax)
	return totals
}

// Apply stores the computed amounts on the quote.
func (t Totals) Apply(q *Quote) {
	q.Subtotal = t.Subtotal
	q.Tax = t.Tax
	q.Total = t.Total
}
