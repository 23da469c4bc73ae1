package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salescloser/internal/clock"
	"github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	"github.com/smallbiznis/salescloser/internal/purchaseorder/repository"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	pkgdb "github.com/smallbiznis/salescloser/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type linesStub []domain.QuoteLineRef

func (l linesStub) QuoteLines(context.Context, *gorm.DB) ([]domain.QuoteLineRef, error) {
	return l, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v snowflake.ID) *snowflake.ID { return &v }

func setupService(t *testing.T, lines linesStub) (domain.Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.PurchaseOrder{}, &pkgdb.Sequence{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fc,
		Repo:  repository.Provide(),
		Lines: lines,
	})
	return svc, fc
}

var sampleLines = linesStub{
	{QuoteID: 1, QuoteNumber: "Q-0001", ClientName: "Acme", LineID: 10, Category: taxdomain.CategoryProduct, Description: "Pump", Quantity: dec("1"), UnitPrice: dec("100")},
	{QuoteID: 1, QuoteNumber: "Q-0001", ClientName: "Acme", LineID: 11, Category: taxdomain.CategoryService, Description: "Setup", Quantity: dec("3"), UnitPrice: dec("100")},
}

func TestCreateValidatesAndNumbers(t *testing.T) {
	svc, _ := setupService(t, sampleLines)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Vendor: "  ", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidVendor)
	_, err = svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1"), UnitCost: dec("-2")})
	assert.ErrorIs(t, err, domain.ErrInvalidCost)
	_, err = svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1"), QuoteID: ptr(1), LineID: ptr(404)})
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	first, err := svc.Create(ctx, domain.CreateRequest{Vendor: "Northwind", Quantity: dec("1"), UnitCost: dec("50"), QuoteID: ptr(1), LineID: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, "PO-0001", first.Number)
	assert.Equal(t, domain.StatusDraft, first.Status)
	assert.Nil(t, first.IssuedAt)

	second, err := svc.Create(ctx, domain.CreateRequest{Vendor: "Contoso", Quantity: dec("1"), Status: domain.StatusOrdered})
	require.NoError(t, err)
	assert.Equal(t, "PO-0002", second.Number)
	assert.NotNil(t, second.IssuedAt)
}

func TestIssueOnlyFromDraft(t *testing.T) {
	svc, fc := setupService(t, nil)
	ctx := context.Background()

	po, err := svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1")})
	require.NoError(t, err)

	fc.Advance(time.Hour)
	issued, err := svc.Issue(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIssued, issued.Status)
	require.NotNil(t, issued.IssuedAt)
	assert.True(t, fc.Now().Equal(*issued.IssuedAt))

	_, err = svc.SetStatus(ctx, po.ID, domain.StatusPaid)
	require.NoError(t, err)

	fc.Advance(time.Hour)
	again, err := svc.Issue(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, again.Status)
	assert.True(t, issued.IssuedAt.Equal(*again.IssuedAt))

	_, err = svc.SetStatus(ctx, po.ID, domain.Status("lost"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = svc.Issue(ctx, snowflake.ID(12345))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	po, err := svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1"), UnitCost: dec("10")})
	require.NoError(t, err)

	qty := dec("4")
	vendor := "Fabrikam"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: po.ID, Quantity: &qty, Vendor: &vendor})
	require.NoError(t, err)
	assert.Equal(t, "Fabrikam", updated.Vendor)
	assert.True(t, updated.Cost().Equal(dec("40")))

	blank := ""
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: po.ID, Vendor: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidVendor)

	require.NoError(t, svc.Delete(ctx, po.ID))
	_, err = svc.Get(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, po.ID), domain.ErrNotFound)
}

func TestDeletingLatestPOKeepsItsNumber(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1")})
	require.NoError(t, err)
	latest, err := svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1")})
	require.NoError(t, err)
	require.Equal(t, "PO-0002", latest.Number)

	require.NoError(t, svc.Delete(ctx, latest.ID))

	next, err := svc.Create(ctx, domain.CreateRequest{Vendor: "V", Quantity: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, "PO-0003", next.Number)
}

func TestMarginReport(t *testing.T) {
	svc, _ := setupService(t, sampleLines)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Vendor: "Northwind", Quantity: dec("1"), UnitCost: dec("50"), QuoteID: ptr(1), LineID: ptr(10)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Vendor: "Contoso", Quantity: dec("3"), UnitCost: dec("90"), QuoteID: ptr(1), LineID: ptr(11)})
	require.NoError(t, err)

	report, err := svc.MarginReport(ctx)
	require.NoError(t, err)
	require.Len(t, report.Margins, 2)
	require.Len(t, report.ByQuote, 1)
	assert.True(t, report.ByQuote[0].MarginPct.Equal(dec("20")))
	assert.True(t, report.Summary.AverageMarginPct.Equal(dec("30")))
	assert.Len(t, report.ByCategory, 2)
}

func TestListFiltersAndSearches(t *testing.T) {
	svc, _ := setupService(t, sampleLines)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Vendor: "Northwind", Quantity: dec("1"), QuoteID: ptr(1), LineID: ptr(10)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Vendor: "Contoso", Quantity: dec("1"), Status: domain.StatusIssued})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	issued, err := svc.List(ctx, domain.ListFilter{Status: domain.StatusIssued})
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.Equal(t, "Contoso", issued[0].PurchaseOrder.Vendor)

	byClient, err := svc.List(ctx, domain.ListFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, "Northwind", byClient[0].PurchaseOrder.Vendor)

	_, err = svc.List(ctx, domain.ListFilter{Status: "void"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
