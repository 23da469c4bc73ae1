package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func id(v int64) *snowflake.ID {
	x := snowflake.ID(v)
	return &x
}

func order(quote, line *snowflake.ID, qty, cost string) PurchaseOrder {
	return PurchaseOrder{QuoteID: quote, LineID: line, Quantity: d(qty), UnitCost: d(cost), Vendor: "V"}
}

func TestMarginPct(t *testing.T) {
	assert.True(t, MarginPct(d("100"), d("50")).Equal(d("50")))
	assert.True(t, MarginPct(decimal.Zero, d("50")).IsZero())
	assert.True(t, MarginPct(d("100"), d("150")).Equal(d("-50")))
}

func TestEvaluateMatchesQuoteLines(t *testing.T) {
	lines := []QuoteLineRef{
		{QuoteID: 1, QuoteNumber: "Q-0001", ClientName: "Acme", LineID: 10, Category: taxdomain.CategoryLabor, Description: "Install", Quantity: d("2"), UnitPrice: d("50")},
	}
	margins := Evaluate([]PurchaseOrder{
		order(id(1), id(10), "1", "60"),
		order(id(1), id(99), "1", "5"),
		order(nil, nil, "2", "7.5"),
	}, lines)
	require.Len(t, margins, 3)

	matched := margins[0]
	assert.True(t, matched.Matched)
	assert.Equal(t, "Q-0001", matched.QuoteNumber)
	assert.Equal(t, taxdomain.CategoryLabor, matched.Category)
	assert.Equal(t, "Install", matched.Description)
	assert.True(t, matched.Sell.Equal(d("100")))
	assert.True(t, matched.Margin.Equal(d("40")))
	assert.True(t, matched.MarginPct.Equal(d("40")))

	staleLine := margins[1]
	assert.False(t, staleLine.Matched)
	assert.Equal(t, "Q-0001", staleLine.QuoteNumber)
	assert.True(t, staleLine.Sell.IsZero())
	assert.True(t, staleLine.MarginPct.IsZero())

	unlinked := margins[2]
	assert.False(t, unlinked.Matched)
	assert.Equal(t, taxdomain.CategoryProduct, unlinked.Category)
	assert.True(t, unlinked.Cost.Equal(d("15")))
}

func TestByQuoteSumsBeforeDividing(t *testing.T) {
	lines := []QuoteLineRef{
		{QuoteID: 1, QuoteNumber: "Q-0001", LineID: 10, Category: taxdomain.CategoryProduct, Quantity: d("1"), UnitPrice: d("100")},
		{QuoteID: 1, QuoteNumber: "Q-0001", LineID: 11, Category: taxdomain.CategoryService, Quantity: d("3"), UnitPrice: d("100")},
	}
	margins := Evaluate([]PurchaseOrder{
		order(id(1), id(10), "1", "50"),
		order(id(1), id(11), "3", "90"),
	}, lines)

	groups := ByQuote(margins)
	require.Len(t, groups, 1)
	assert.Equal(t, "Q-0001", groups[0].Label)
	assert.Equal(t, 2, groups[0].Orders)
	assert.True(t, groups[0].Sell.Equal(d("400")))
	assert.True(t, groups[0].Cost.Equal(d("320")))
	assert.True(t, groups[0].MarginPct.Equal(d("20")), groups[0].MarginPct.String())

	summary := Summarize(margins)
	assert.Equal(t, 2, summary.Orders)
	assert.True(t, summary.TotalMargin.Equal(d("80")))
	assert.True(t, summary.AverageMarginPct.Equal(d("30")), summary.AverageMarginPct.String())
}

func TestByQuoteOrdersAndGroupsUnlinked(t *testing.T) {
	lines := []QuoteLineRef{
		{QuoteID: 1, QuoteNumber: "Q-0001", LineID: 10, Quantity: d("1"), UnitPrice: d("100")},
		{QuoteID: 2, QuoteNumber: "Q-0002", LineID: 20, Quantity: d("1"), UnitPrice: d("100")},
	}
	margins := Evaluate([]PurchaseOrder{
		order(id(1), id(10), "1", "90"),
		order(nil, nil, "1", "10"),
		order(id(2), id(20), "1", "40"),
		order(nil, nil, "1", "5"),
	}, lines)

	groups := ByQuote(margins)
	require.Len(t, groups, 3)
	assert.Equal(t, "Q-0002", groups[0].Label)
	assert.Equal(t, "Q-0001", groups[1].Label)
	assert.Equal(t, UnlinkedLabel, groups[2].Label)
	assert.Equal(t, 2, groups[2].Orders)
	assert.True(t, groups[2].Cost.Equal(d("15")))
	assert.True(t, groups[2].MarginPct.IsZero())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Orders)
	assert.True(t, s.AverageMarginPct.IsZero())
	assert.Empty(t, ByQuote(nil))
	assert.Empty(t, CostByCategory(nil))
}

func TestCostByCategory(t *testing.T) {
	lines := []QuoteLineRef{
		{QuoteID: 1, LineID: 10, Category: taxdomain.CategoryFreight, Quantity: d("1"), UnitPrice: d("10")},
		{QuoteID: 1, LineID: 11, Category: taxdomain.CategoryLabor, Quantity: d("1"), UnitPrice: d("10")},
	}
	costs := CostByCategory(Evaluate([]PurchaseOrder{
		order(id(1), id(10), "1", "4"),
		order(id(1), id(11), "2", "3"),
		order(nil, nil, "1", "1"),
		order(id(1), id(10), "1", "2"),
	}, lines))

	require.Len(t, costs, 3)
	assert.Equal(t, taxdomain.CategoryProduct, costs[0].Category)
	assert.True(t, costs[0].Cost.Equal(d("1")))
	assert.Equal(t, taxdomain.CategoryLabor, costs[1].Category)
	assert.True(t, costs[1].Cost.Equal(d("6")))
	assert.Equal(t, taxdomain.CategoryFreight, costs[2].Category)
	assert.True(t, costs[2].Cost.Equal(d("6")))
}
