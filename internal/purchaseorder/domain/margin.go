package domain

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
)

// UnlinkedLabel names the group of purchase orders without a quote.
const UnlinkedLabel = "unlinked"

const missingLabel = "—"

var hundred = decimal.NewFromInt(100)

// LineMargin is one purchase order priced against the quote line it fills.
type LineMargin struct {
	PurchaseOrder PurchaseOrder      `json:"purchase_order"`
	Matched       bool               `json:"matched"`
	QuoteNumber   string             `json:"quote_number"`
	ClientName    string             `json:"client_name"`
	Category      taxdomain.Category `json:"category"`
	Description   string             `json:"description"`
	Sell          decimal.Decimal    `json:"sell"`
	Cost          decimal.Decimal    `json:"cost"`
	Margin        decimal.Decimal    `json:"margin"`
	MarginPct     decimal.Decimal    `json:"margin_pct"`
}

// QuoteMargin aggregates the purchase orders of one quote.
type QuoteMargin struct {
	QuoteID   *snowflake.ID   `json:"quote_id,omitempty"`
	Label     string          `json:"label"`
	Orders    int             `json:"orders"`
	Sell      decimal.Decimal `json:"sell"`
	Cost      decimal.Decimal `json:"cost"`
	Margin    decimal.Decimal `json:"margin"`
	MarginPct decimal.Decimal `json:"margin_pct"`
}

// Summary is the portfolio view. AverageMarginPct is the mean of the
// per-order percentages and is not the same as TotalMargin / TotalSell.
type Summary struct {
	Orders           int             `json:"orders"`
	TotalSell        decimal.Decimal `json:"total_sell"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalMargin      decimal.Decimal `json:"total_margin"`
	AverageMarginPct decimal.Decimal `json:"average_margin_pct"`
}

type CategoryCost struct {
	Category taxdomain.Category `json:"category"`
	Cost     decimal.Decimal    `json:"cost"`
}

// MarginPct is margin / sell × 100, or zero when nothing is sold.
func MarginPct(sell, cost decimal.Decimal) decimal.Decimal {
	if !sell.IsPositive() {
		return decimal.Zero
	}
	return sell.Sub(cost).Div(sell).Mul(hundred)
}

// Evaluate prices every purchase order against its quote line. Orders whose
// line cannot be found sell for zero.
func Evaluate(orders []PurchaseOrder, lines []QuoteLineRef) []LineMargin {
	byLine := make(map[[2]snowflake.ID]QuoteLineRef, len(lines))
	numbers := make(map[snowflake.ID]QuoteLineRef, len(lines))
	for _, l := range lines {
		byLine[[2]snowflake.ID{l.QuoteID, l.LineID}] = l
		if _, ok := numbers[l.QuoteID]; !ok {
			numbers[l.QuoteID] = l
		}
	}

	out := make([]LineMargin, 0, len(orders))
	for _, po := range orders {
		m := LineMargin{
			PurchaseOrder: po,
			QuoteNumber:   missingLabel,
			ClientName:    missingLabel,
			Category:      taxdomain.CategoryProduct,
			Description:   po.Description,
			Sell:          decimal.Zero,
			Cost:          po.Cost(),
		}

		if po.QuoteID != nil {
			if ref, ok := numbers[*po.QuoteID]; ok {
				m.QuoteNumber = ref.QuoteNumber
				m.ClientName = ref.ClientName
			}
			if po.LineID != nil {
				if line, ok := byLine[[2]snowflake.ID{*po.QuoteID, *po.LineID}]; ok {
					m.Matched = true
					m.Category = line.Category
					m.Sell = line.Sell()
					if line.Description != "" {
						m.Description = line.Description
					}
				}
			}
		}

		m.Margin = m.Sell.Sub(m.Cost)
		m.MarginPct = MarginPct(m.Sell, m.Cost)
		out = append(out, m)
	}
	return out
}

// ByQuote groups margins per quote, summing sell and cost before dividing.
// Groups come back ordered by margin percentage, highest first.
func ByQuote(margins []LineMargin) []QuoteMargin {
	index := make(map[string]int)
	var groups []QuoteMargin

	for _, m := range margins {
		key := UnlinkedLabel
		if m.PurchaseOrder.QuoteID != nil {
			key = m.PurchaseOrder.QuoteID.String()
		}

		i, ok := index[key]
		if !ok {
			g := QuoteMargin{
				QuoteID: m.PurchaseOrder.QuoteID,
				Label:   m.QuoteNumber,
				Sell:    decimal.Zero,
				Cost:    decimal.Zero,
			}
			if g.QuoteID == nil {
				g.Label = UnlinkedLabel
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[key] = i
		}

		groups[i].Orders++
		groups[i].Sell = groups[i].Sell.Add(m.Sell)
		groups[i].Cost = groups[i].Cost.Add(m.Cost)
	}

	for i := range groups {
		groups[i].Margin = groups[i].Sell.Sub(groups[i].Cost)
		groups[i].MarginPct = MarginPct(groups[i].Sell, groups[i].Cost)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].MarginPct.GreaterThan(groups[b].MarginPct)
	})
	return groups
}

func Summarize(margins []LineMargin) Summary {
	s := Summary{
		Orders:           len(margins),
		TotalSell:        decimal.Zero,
		TotalCost:        decimal.Zero,
		TotalMargin:      decimal.Zero,
		AverageMarginPct: decimal.Zero,
	}
	if len(margins) == 0 {
		return s
	}

	pctSum := decimal.Zero
	for _, m := range margins {
		s.TotalSell = s.TotalSell.Add(m.Sell)
		s.TotalCost = s.TotalCost.Add(m.Cost)
		pctSum = pctSum.Add(m.MarginPct)
	}
	s.TotalMargin = s.TotalSell.Sub(s.TotalCost)
	s.AverageMarginPct = pctSum.Div(decimal.NewFromInt(int64(len(margins))))
	return s
}

// CostByCategory totals purchase cost per line category, in category order.
func CostByCategory(margins []LineMargin) []CategoryCost {
	totals := make(map[taxdomain.Category]decimal.Decimal)
	for _, m := range margins {
		cur, ok := totals[m.Category]
		if !ok {
			cur = decimal.Zero
		}
		totals[m.Category] = cur.Add(m.Cost)
	}

	order := []taxdomain.Category{
		taxdomain.CategoryProduct,
		taxdomain.CategoryService,
		taxdomain.CategoryLabor,
		taxdomain.CategoryFreight,
	}
	out := make([]CategoryCost, 0, len(totals))
	for _, c := range order {
		if cost, ok := totals[c]; ok {
			out = append(out, CategoryCost{Category: c, Cost: cost})
		}
	}
	return out
}
