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
	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"github.com/smallbiznis/salescloser/internal/pipeline/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type quoteSourceStub struct {
	quotes []domain.QuoteSnapshot
}

func (s *quoteSourceStub) QuoteSnapshot(_ context.Context, _ *gorm.DB, id snowflake.ID) (*domain.QuoteSnapshot, error) {
	for i := range s.quotes {
		if s.quotes[i].ID == id {
			q := s.quotes[i]
			return &q, nil
		}
	}
	return nil, nil
}

func (s *quoteSourceStub) QuoteSnapshots(context.Context, *gorm.DB) ([]domain.QuoteSnapshot, error) {
	out := make([]domain.QuoteSnapshot, len(s.quotes))
	copy(out, s.quotes)
	return out, nil
}

func (s *quoteSourceStub) setStatus(id snowflake.ID, status string) {
	for i := range s.quotes {
		if s.quotes[i].ID == id {
			s.quotes[i].Status = status
		}
	}
}

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	clock  *clock.FakeClock
	quotes *quoteSourceStub
}

func setupService(t *testing.T) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Deal{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	quotes := &quoteSourceStub{}
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fc,
		Repo:   repository.Provide(),
		Quotes: quotes,
	})
	return fixture{svc: svc, db: db, clock: fc, quotes: quotes}
}

func linkedDeals(t *testing.T, f fixture, quoteID snowflake.ID) []domain.Deal {
	t.Helper()
	board, err := f.svc.Board(context.Background())
	require.NoError(t, err)
	var out []domain.Deal
	for _, d := range board.Deals() {
		if d.LinkedTo(quoteID) {
			out = append(out, d)
		}
	}
	return out
}

func TestSyncQuoteMissingQuoteIsNoop(t *testing.T) {
	f := setupService(t)

	res, err := f.svc.SyncQuote(context.Background(), snowflake.ID(42))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionNone, res.Action)

	board, err := f.svc.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, board.Len())
}

func TestSyncQuoteLifecycle(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	quoteID := snowflake.ID(11)
	f.quotes.quotes = []domain.QuoteSnapshot{{
		ID: quoteID, Number: "Q-0001", ClientName: "Acme", Status: "draft", Total: decimal.NewFromInt(110),
	}}

	created, err := f.svc.SyncQuote(ctx, quoteID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionCreated, created.Action)

	again, err := f.svc.SyncQuote(ctx, quoteID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionUnchanged, again.Action)

	note := "prefers email"
	_, err = f.svc.UpdateDeal(ctx, domain.UpdateDealRequest{ID: created.Deal.ID, Note: &note})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	f.quotes.setStatus(quoteID, "won")
	moved, err := f.svc.SyncQuote(ctx, quoteID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionMoved, moved.Action)

	deals := linkedDeals(t, f, quoteID)
	require.Len(t, deals, 1)
	assert.Equal(t, created.Deal.ID, deals[0].ID)
	assert.Equal(t, domain.StageWon, deals[0].Stage)
	assert.Equal(t, "prefers email", deals[0].Note)
	require.NotNil(t, deals[0].MovedAt)
	assert.True(t, f.clock.Now().Equal(*deals[0].MovedAt))
	assert.Equal(t, "110.00", deals[0].Value.StringFixed(2))
}

func TestSyncAllCreatesOneDealPerQuote(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.quotes.quotes = []domain.QuoteSnapshot{
		{ID: 1, Number: "Q-0001", ClientName: "A", Status: "draft", Total: decimal.NewFromInt(1)},
		{ID: 2, Number: "Q-0002", ClientName: "B", Status: "sent", Total: decimal.NewFromInt(2)},
		{ID: 3, Number: "Q-0003", ClientName: "C", Status: "lost", Total: decimal.NewFromInt(3)},
	}

	_, err := f.svc.AddDeal(ctx, domain.AddDealRequest{Stage: domain.StageLead, Name: "Walk-in", Value: decimal.NewFromInt(50)})
	require.NoError(t, err)

	summary, err := f.svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Quotes)
	assert.Equal(t, 3, summary.Created)
	assert.Empty(t, summary.Violations)

	summary, err = f.svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Unchanged)
	assert.Zero(t, summary.Created+summary.Moved+summary.Updated)

	for _, q := range f.quotes.quotes {
		deals := linkedDeals(t, f, q.ID)
		require.Len(t, deals, 1, q.Number)
		assert.Equal(t, domain.StageForStatus(q.Status), deals[0].Stage)
	}

	board, err := f.svc.Board(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, board.Len())
}

func TestMoveAndDeleteDeal(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	deal, err := f.svc.AddDeal(ctx, domain.AddDealRequest{Stage: domain.StageLead, Name: "Referral"})
	require.NoError(t, err)

	moved, err := f.svc.MoveDeal(ctx, domain.MoveDealRequest{ID: deal.ID, From: domain.StageLead, To: domain.StageNegotiate})
	require.NoError(t, err)
	assert.Equal(t, domain.StageNegotiate, moved.Stage)
	require.NotNil(t, moved.MovedAt)

	_, err = f.svc.MoveDeal(ctx, domain.MoveDealRequest{ID: deal.ID, From: domain.StageLead, To: domain.StageWon})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteDeal(ctx, deal.ID, domain.StageLead), domain.ErrNotFound)
	require.NoError(t, f.svc.DeleteDeal(ctx, deal.ID, domain.StageNegotiate))

	board, err := f.svc.Board(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, board.Len())
}

func TestAddDealValidation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.AddDeal(ctx, domain.AddDealRequest{Stage: "archive", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)

	_, err = f.svc.AddDeal(ctx, domain.AddDealRequest{Stage: domain.StageLead, Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.AddDeal(ctx, domain.AddDealRequest{Stage: domain.StageLead, Name: "x", Value: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestReleaseQuotePolicies(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	quoteID := snowflake.ID(5)
	f.quotes.quotes = []domain.QuoteSnapshot{{ID: quoteID, Number: "Q-0005", ClientName: "E", Status: "sent", Total: decimal.NewFromInt(5)}}
	_, err := f.svc.SyncQuote(ctx, quoteID)
	require.NoError(t, err)

	n, err := f.svc.ReleaseQuote(ctx, quoteID, config.DeletePolicyOrphan)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, linkedDeals(t, f, quoteID), 1)

	n, err = f.svc.ReleaseQuote(ctx, quoteID, config.DeletePolicyCascade)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, linkedDeals(t, f, quoteID))

	_, err = f.svc.ReleaseQuote(ctx, quoteID, config.DeletePolicy("shred"))
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
}
