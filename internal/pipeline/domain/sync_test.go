package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boardCmp = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

func sequence(start int64) func() snowflake.ID {
	next := start
	return func() snowflake.ID {
		next++
		return snowflake.ID(next)
	}
}

func quote(id int64, number, client, status, total string) QuoteSnapshot {
	return QuoteSnapshot{
		ID:         snowflake.ID(id),
		Number:     number,
		ClientName: client,
		Status:     status,
		Total:      decimal.RequireFromString(total),
	}
}

func columnDeals(t *testing.T, b Board, stage StageID) []Deal {
	t.Helper()
	col, ok := b.Column(stage)
	require.True(t, ok)
	return col.Deals
}

var t0 = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

func TestReconcileCreatesLinkedDeal(t *testing.T) {
	board := NewBoard(nil)
	q := quote(1, "Q-0001", "Acme Corp", "draft", "110")

	next, res := Reconcile(board, q, t0, sequence(100))

	assert.Equal(t, SyncActionCreated, res.Action)
	assert.Equal(t, StageQuoted, res.To)
	deals := columnDeals(t, next, StageQuoted)
	require.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, snowflake.ID(101), d.ID)
	assert.True(t, d.LinkedTo(q.ID))
	assert.Equal(t, "Acme Corp", d.Name)
	assert.Equal(t, "Acme Corp", d.Company)
	assert.Equal(t, "Linked to Q-0001", d.Note)
	assert.Equal(t, "Q-0001", d.QuoteNumber)
	assert.True(t, d.Value.Equal(decimal.NewFromInt(110)))
	assert.Equal(t, t0, d.CreatedAt)
	assert.Nil(t, d.MovedAt)
	assert.Equal(t, 0, board.Len(), "input board must not change")
}

func TestReconcileNameFallsBackToQuoteNumber(t *testing.T) {
	next, res := Reconcile(NewBoard(nil), quote(1, "Q-0007", "  ", "sent", "0"), t0, sequence(0))
	assert.Equal(t, "Q-0007", res.Deal.Name)
	assert.Empty(t, res.Deal.Company)

	// A later blank client name keeps the card's existing name.
	_, res = Reconcile(next, quote(1, "Q-0007", "", "sent", "25"), t0, sequence(10))
	assert.Equal(t, SyncActionUpdated, res.Action)
	assert.Equal(t, "Q-0007", res.Deal.Name)
	assert.True(t, res.Deal.Value.Equal(decimal.NewFromInt(25)))
}

func TestReconcileIsIdempotent(t *testing.T) {
	q := quote(1, "Q-0001", "Acme Corp", "sent", "250.50")
	once, first := Reconcile(NewBoard(nil), q, t0, sequence(0))
	require.Equal(t, SyncActionCreated, first.Action)

	twice, second := Reconcile(once, q, t0.Add(time.Hour), sequence(50))
	assert.Equal(t, SyncActionUnchanged, second.Action)
	assert.False(t, second.Changed())
	if diff := cmp.Diff(once, twice, boardCmp...); diff != "" {
		t.Fatalf("second reconcile changed the board (-once +twice):\n%s", diff)
	}
}

func TestReconcileStatusTransitionMovesDeal(t *testing.T) {
	q := quote(1, "Q-0001", "Acme Corp", "draft", "100")
	board, created := Reconcile(NewBoard(nil), q, t0, sequence(0))

	later := t0.Add(48 * time.Hour)
	q.Status = "won"
	board, moved := Reconcile(board, q, later, sequence(50))

	assert.Equal(t, SyncActionMoved, moved.Action)
	assert.Equal(t, StageQuoted, moved.From)
	assert.Equal(t, StageWon, moved.To)
	assert.Empty(t, columnDeals(t, board, StageQuoted))

	won := columnDeals(t, board, StageWon)
	require.Len(t, won, 1)
	assert.Equal(t, created.Deal.ID, won[0].ID)
	assert.Equal(t, StageWon, won[0].Stage)
	require.NotNil(t, won[0].MovedAt)
	assert.Equal(t, later, *won[0].MovedAt)
	assert.Equal(t, t0, won[0].CreatedAt)
}

func TestReconcileKeepsNoteAndSlot(t *testing.T) {
	quoteID := snowflake.ID(7)
	board := NewBoard([]Deal{
		{ID: 1, Stage: StageSent, Position: 0, Name: "Manual", Value: decimal.NewFromInt(5)},
		{ID: 2, Stage: StageSent, Position: 1, QuoteID: &quoteID, Name: "Old", Note: "call Tuesday", QuoteNumber: "Q-0003", Value: decimal.NewFromInt(10)},
		{ID: 3, Stage: StageSent, Position: 2, Name: "Other", Value: decimal.NewFromInt(1)},
	})

	next, res := Reconcile(board, quote(7, "Q-0003", "Globex", "sent", "99.95"), t0, sequence(0))

	assert.Equal(t, SyncActionUpdated, res.Action)
	deals := columnDeals(t, next, StageSent)
	require.Len(t, deals, 3)
	assert.Equal(t, snowflake.ID(2), deals[1].ID)
	assert.Equal(t, "call Tuesday", deals[1].Note)
	assert.Equal(t, "Globex", deals[1].Name)
	assert.True(t, deals[1].Value.Equal(decimal.RequireFromString("99.95")))
	assert.Nil(t, deals[1].MovedAt)
	assert.Equal(t, 1, deals[1].Position)
}

func TestReconcileFirstLinkedDealWins(t *testing.T) {
	quoteID := snowflake.ID(9)
	board := NewBoard([]Deal{
		{ID: 1, Stage: StageSent, QuoteID: &quoteID, Name: "first"},
		{ID: 2, Stage: StageWon, QuoteID: &quoteID, Name: "second"},
	})
	assert.Equal(t, []snowflake.ID{quoteID}, board.LinkViolations())

	next, res := Reconcile(board, quote(9, "Q-0009", "Initech", "lost", "10"), t0, sequence(0))

	assert.Equal(t, SyncActionMoved, res.Action)
	assert.Equal(t, snowflake.ID(1), res.Deal.ID)
	lost := columnDeals(t, next, StageLost)
	require.Len(t, lost, 1)
	assert.Equal(t, snowflake.ID(1), lost[0].ID)
	won := columnDeals(t, next, StageWon)
	require.Len(t, won, 1)
	assert.Equal(t, "second", won[0].Name)
}

func TestReconcileAllKeepsOneDealPerQuote(t *testing.T) {
	staleID := snowflake.ID(2)
	board := NewBoard([]Deal{
		{ID: 500, Stage: StageNegotiate, Name: "Walk-in", Note: "manual"},
		{ID: 501, Stage: StageLead, QuoteID: &staleID, Name: "Stale"},
	})
	quotes := []QuoteSnapshot{
		quote(1, "Q-0001", "A", "draft", "1"),
		quote(2, "Q-0002", "B", "won", "2"),
		quote(3, "Q-0003", "C", "lost", "3"),
		quote(4, "Q-0004", "D", "archived", "4"),
		quote(5, "Q-0005", "E", "sent", "5"),
	}

	next, results := ReconcileAll(board, quotes, t0, sequence(1000))
	require.Len(t, results, len(quotes))

	for _, q := range quotes {
		count := 0
		for _, col := range next.Columns {
			for _, d := range col.Deals {
				if d.LinkedTo(q.ID) {
					count++
					assert.Equal(t, StageForStatus(q.Status), col.Stage.ID, q.Number)
				}
			}
		}
		assert.Equal(t, 1, count, q.Number)
	}
	assert.Empty(t, next.LinkViolations())

	manual, ok := next.Find(500, StageNegotiate)
	require.True(t, ok)
	assert.Equal(t, "manual", manual.Note)

	again, rerun := ReconcileAll(next, quotes, t0.Add(time.Hour), sequence(2000))
	for _, r := range rerun {
		assert.Equal(t, SyncActionUnchanged, r.Action)
	}
	if diff := cmp.Diff(next, again, boardCmp...); diff != "" {
		t.Fatalf("rerun changed the board:\n%s", diff)
	}
}

func TestStageForStatus(t *testing.T) {
	tests := map[string]StageID{
		"draft":   StageQuoted,
		"sent":    StageSent,
		"won":     StageWon,
		"lost":    StageLost,
		"expired": StageQuoted,
		"":        StageQuoted,
	}
	for status, want := range tests {
		assert.Equal(t, want, StageForStatus(status), status)
	}
}

func TestMove(t *testing.T) {
	board := NewBoard([]Deal{{ID: 1, Stage: StageLead, Name: "Lead"}})

	next, deal, err := Move(board, 1, StageLead, StageNegotiate, t0)
	require.NoError(t, err)
	assert.Equal(t, StageNegotiate, deal.Stage)
	require.NotNil(t, deal.MovedAt)
	assert.Equal(t, t0, *deal.MovedAt)
	assert.Empty(t, columnDeals(t, next, StageLead))

	_, _, err = Move(board, 1, StageWon, StageLost, t0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = Move(board, 1, StageLead, StageID("archive"), t0)
	assert.ErrorIs(t, err, ErrInvalidStage)

	same, deal, err := Move(board, 1, StageLead, StageLead, t0)
	require.NoError(t, err)
	assert.Nil(t, deal.MovedAt)
	assert.Len(t, columnDeals(t, same, StageLead), 1)
}

func TestNewBoardOrdersColumns(t *testing.T) {
	board := NewBoard([]Deal{
		{ID: 3, Stage: StageWon, Position: 1},
		{ID: 2, Stage: StageWon, Position: 0},
		{ID: 9, Stage: StageID("bogus")},
	})

	require.Len(t, board.Columns, 6)
	assert.Equal(t, StageLead, board.Columns[0].Stage.ID)
	assert.Equal(t, StageLost, board.Columns[5].Stage.ID)

	won := columnDeals(t, board, StageWon)
	assert.Equal(t, snowflake.ID(2), won[0].ID)
	assert.Equal(t, snowflake.ID(3), won[1].ID)

	_, ok := board.Find(9, StageLead)
	assert.True(t, ok)
	assert.Equal(t, 3, board.Len())
}

func TestColumnTotal(t *testing.T) {
	board := NewBoard([]Deal{
		{ID: 1, Stage: StageWon, Value: decimal.RequireFromString("106.25")},
		{ID: 2, Stage: StageWon, Position: 1, Value: decimal.RequireFromString("40")},
	})
	won, ok := board.Column(StageWon)
	require.True(t, ok)
	assert.Equal(t, "146.25", won.Total().StringFixed(2))

	lead, _ := board.Column(StageLead)
	assert.True(t, lead.Total().IsZero())
}

func TestEmptyColumnsEncodeAsArrays(t *testing.T) {
	board := NewBoard([]Deal{{ID: 1, Stage: StageWon}})

	lead, ok := board.Column(StageLead)
	require.True(t, ok)
	assert.NotNil(t, lead.Deals)
	assert.Empty(t, lead.Deals)

	raw, err := json.Marshal(board)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"deals":null`)
	assert.Contains(t, string(raw), `"deals":[]`)
}
