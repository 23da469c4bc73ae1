package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salescloser/internal/backup/domain"
	"github.com/smallbiznis/salescloser/internal/backup/repository"
	clientdomain "github.com/smallbiznis/salescloser/internal/client/domain"
	"github.com/smallbiznis/salescloser/internal/clock"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	companyrepo "github.com/smallbiznis/salescloser/internal/company/repository"
	companyservice "github.com/smallbiznis/salescloser/internal/company/service"
	"github.com/smallbiznis/salescloser/internal/config"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	pipelinerepo "github.com/smallbiznis/salescloser/internal/pipeline/repository"
	pipelineservice "github.com/smallbiznis/salescloser/internal/pipeline/service"
	podomain "github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	"github.com/smallbiznis/salescloser/internal/quote"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	quoterepo "github.com/smallbiznis/salescloser/internal/quote/repository"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	taxservice "github.com/smallbiznis/salescloser/internal/tax/service"
	"github.com/smallbiznis/salescloser/internal/tax/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
}

func setup(t *testing.T) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&companydomain.Settings{},
		&clientdomain.Client{},
		&quotedomain.Quote{},
		&quotedomain.Line{},
		&pipelinedomain.Deal{},
		&podomain.PurchaseOrder{},
		&domain.Record{},
	))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)
	tbl, err := table.Default()
	require.NoError(t, err)
	engine := taxservice.NewEngine(taxservice.Params{Log: zap.NewNop(), Table: table.NewStaticHolder(tbl)})
	fc := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))

	company := companyservice.New(companyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{DefaultJurisdiction: "MA"},
		Clock: fc,
		Repo:  companyrepo.Provide(),
		Tax:   engine,
	})
	board := pipelineservice.New(pipelineservice.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fc,
		Repo:   pipelinerepo.Provide(),
		Quotes: quote.NewPipelineSource(quoterepo.Provide()),
	})
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fc,
		Repo:     repository.Provide(),
		Company:  company,
		Pipeline: board,
	})
	return fixture{svc: svc, db: db, clock: fc}
}

func seed(t *testing.T, db *gorm.DB) (quoteID snowflake.ID) {
	t.Helper()
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	quoteID = snowflake.ID(1001)
	lineID := snowflake.ID(2001)

	require.NoError(t, companyrepo.Provide().Save(context.Background(), db, &companydomain.Settings{
		Name: "Acme Tools", HomeJurisdiction: "NY", UpdatedAt: now,
	}))
	require.NoError(t, db.Create(&clientdomain.Client{
		ID: 3001, Name: "Harbor", Email: "ops@harbor.test", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&quotedomain.Quote{
		ID: quoteID, Sequence: 1, Number: "Q-0001", ClientName: "Harbor", Jurisdiction: "NY",
		Status: quotedomain.StatusWon, Subtotal: decimal.NewFromInt(100), Tax: decimal.NewFromInt(8),
		Total: decimal.NewFromInt(108), CreatedAt: now, UpdatedAt: now,
		Lines: []quotedomain.Line{{
			ID: lineID, QuoteID: quoteID, Position: 1, Category: taxdomain.CategoryProduct,
			Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50),
		}},
	}).Error)
	require.NoError(t, db.Create(&[]pipelinedomain.Deal{
		{ID: 4001, Stage: pipelinedomain.StageWon, Position: 1, QuoteID: &quoteID, Name: "Harbor",
			Company: "Harbor", Value: decimal.NewFromInt(108), Note: "call Friday", QuoteNumber: "Q-0001", CreatedAt: now},
		{ID: 4002, Stage: pipelinedomain.StageLead, Position: 1, Name: "Walk-in", Value: decimal.Zero, CreatedAt: now},
	}).Error)
	require.NoError(t, db.Create(&podomain.PurchaseOrder{
		ID: 5001, Sequence: 1, Number: "PO-0001", QuoteID: &quoteID, LineID: &lineID, Vendor: "Northwind",
		Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(30), Status: podomain.StatusDraft,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	return quoteID
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress_%v", compress), func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			quoteID := seed(t, f.db)

			var buf bytes.Buffer
			record, err := f.svc.Export(ctx, &buf, domain.ExportOptions{Compress: compress})
			require.NoError(t, err)
			assert.Equal(t, domain.MethodExport, record.Method)
			assert.Equal(t, compress, record.Compressed)
			assert.EqualValues(t, buf.Len(), record.SizeBytes)
			assert.True(t, strings.HasPrefix(record.FileName, "salescloser-acme-tools-20250301-093000.json"))

			require.NoError(t, f.db.Where("1 = 1").Delete(&pipelinedomain.Deal{}).Error)
			require.NoError(t, f.db.Create(&clientdomain.Client{ID: 3999, Name: "Stray", CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}).Error)

			f.clock.Advance(time.Minute)
			result, err := f.svc.Import(ctx, &buf, record.FileName)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Clients)
			assert.Equal(t, 1, result.Quotes)
			assert.Equal(t, 2, result.Deals)
			assert.Equal(t, 1, result.PurchaseOrders)
			assert.Equal(t, compress, result.Record.Compressed)
			assert.Zero(t, result.Sync.Created)
			assert.Equal(t, 1, result.Sync.Unchanged)

			var clients []clientdomain.Client
			require.NoError(t, f.db.Find(&clients).Error)
			require.Len(t, clients, 1)
			assert.Equal(t, "Harbor", clients[0].Name)

			var deals []pipelinedomain.Deal
			require.NoError(t, f.db.Order("id").Find(&deals).Error)
			require.Len(t, deals, 2)
			assert.Equal(t, "call Friday", deals[0].Note)
			assert.True(t, deals[0].LinkedTo(quoteID))

			var lines []quotedomain.Line
			require.NoError(t, f.db.Find(&lines).Error)
			assert.Len(t, lines, 1)

			records, err := f.svc.Records(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, domain.MethodImport, records[0].Method)
		})
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, strings.NewReader("  \n"), "empty.json")
	assert.ErrorIs(t, err, domain.ErrEmptySnapshot)

	_, err = f.svc.Import(ctx, strings.NewReader(`{"format":"other","version":1}`), "bad.json")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	_, err = f.svc.Import(ctx, strings.NewReader("\x00\x01garbage"), "bad.sz")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestImportRejectsNewerVersion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seed(t, f.db)

	var buf bytes.Buffer
	_, err := f.svc.Export(ctx, &buf, domain.ExportOptions{})
	require.NoError(t, err)

	doc := strings.Replace(buf.String(), `"version": 1`, `"version": 99`, 1)
	_, err = f.svc.Import(ctx, strings.NewReader(doc), "future.json")
	assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)
}

func TestRecordsArePruned(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seed(t, f.db)

	for i := 0; i < domain.RecordsKept+3; i++ {
		f.clock.Advance(time.Second)
		_, err := f.svc.Export(ctx, &bytes.Buffer{}, domain.ExportOptions{})
		require.NoError(t, err)
	}

	records, err := f.svc.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, domain.RecordsKept)

	var total int64
	require.NoError(t, f.db.Model(&domain.Record{}).Count(&total).Error)
	assert.EqualValues(t, domain.RecordsKept, total)
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 12, 31, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, "salescloser-harbor-pumps-co-20251231-235958.json", FileName("Harbor Pumps Co", at, false))
	assert.Equal(t, "salescloser-20251231-235958.json.sz", FileName("  ", at, true))
}
