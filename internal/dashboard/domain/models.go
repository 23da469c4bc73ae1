package domain

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
)

const recentLimit = 5

// Snapshot is the at-a-glance view of the business.
type Snapshot struct {
	CompanyName  string          `json:"company_name"`
	OpenQuotes   int             `json:"open_quotes"`
	TotalClients int64           `json:"total_clients"`
	DealsWon     int             `json:"deals_won"`
	RevenueWon   decimal.Decimal `json:"revenue_won"`
	Recent       []RecentQuote   `json:"recent"`
}

type RecentQuote struct {
	ID         snowflake.ID       `json:"id"`
	Number     string             `json:"number"`
	ClientName string             `json:"client_name"`
	Status     quotedomain.Status `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	CreatedAt  time.Time          `json:"created_at"`
}

type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Summarize builds the snapshot. Open quotes are drafts plus sent quotes;
// deals won counts cards in the won column, linked or not; revenue won sums
// the totals of won quotes.
func Summarize(quotes []quotedomain.Quote, clientCount int64, board pipelinedomain.Board) Snapshot {
	snap := Snapshot{
		TotalClients: clientCount,
		RevenueWon:   decimal.Zero,
		Recent:       make([]RecentQuote, 0, recentLimit),
	}
	if won, ok := board.Column(pipelinedomain.StageWon); ok {
		snap.DealsWon = len(won.Deals)
	}

	for _, q := range quotes {
		if q.Status.Open() {
			snap.OpenQuotes++
		}
		if q.Status == quotedomain.StatusWon {
			snap.RevenueWon = snap.RevenueWon.Add(q.Total)
		}
	}

	recent := make([]quotedomain.Quote, len(quotes))
	copy(recent, quotes)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	for _, q := range recent {
		snap.Recent = append(snap.Recent, RecentQuote{
			ID:         q.ID,
			Number:     q.Number,
			ClientName: q.ClientName,
			Status:     q.Status,
			Total:      q.Total,
			CreatedAt:  q.CreatedAt,
		})
	}
	return snap
}
