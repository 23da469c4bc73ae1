package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type SyncAction string

const (
	SyncActionNone      SyncAction = "none"
	SyncActionCreated   SyncAction = "created"
	SyncActionMoved     SyncAction = "moved"
	SyncActionUpdated   SyncAction = "updated"
	SyncActionUnchanged SyncAction = "unchanged"
)

// SyncResult describes what one reconciliation did to the board.
type SyncResult struct {
	Action  SyncAction   `json:"action"`
	QuoteID snowflake.ID `json:"quote_id"`
	Deal    Deal         `json:"deal"`
	From    StageID      `json:"from,omitempty"`
	To      StageID      `json:"to,omitempty"`
}

// Changed reports whether the board differs after the reconciliation.
func (r SyncResult) Changed() bool {
	switch r.Action {
	case SyncActionCreated, SyncActionMoved, SyncActionUpdated:
		return true
	default:
		return false
	}
}

type SyncSummary struct {
	Quotes     int            `json:"quotes"`
	Created    int            `json:"created"`
	Moved      int            `json:"moved"`
	Updated    int            `json:"updated"`
	Unchanged  int            `json:"unchanged"`
	Violations []snowflake.ID `json:"violations,omitempty"`
}

func (s *SyncSummary) Add(r SyncResult) {
	switch r.Action {
	case SyncActionCreated:
		s.Created++
	case SyncActionMoved:
		s.Moved++
	case SyncActionUpdated:
		s.Updated++
	case SyncActionUnchanged:
		s.Unchanged++
	}
}

// Reconcile mirrors one quote onto the board and returns the new board.
//
// The first deal linked to the quote (in stage order) is refreshed from the
// quote: name, company, value and quote number. Its id, note and creation
// time are kept. If the deal already sits in the stage for the quote's status
// it is replaced in its slot; otherwise it is appended to the target stage
// with MovedAt set to now. Without a linked deal a new one is appended.
// Reconciling the result again with the same quote is a no-op.
func Reconcile(board Board, q QuoteSnapshot, now time.Time, newID func() snowflake.ID) (Board, SyncResult) {
	target := StageForStatus(q.Status)

	existing, from, found := board.FindLinked(q.ID)
	if !found {
		quoteID := q.ID
		next, deal := board.Append(target, Deal{
			ID:          newID(),
			QuoteID:     &quoteID,
			Name:        firstNonEmpty(q.ClientName, q.Number),
			Company:     strings.TrimSpace(q.ClientName),
			Value:       q.Total,
			Note:        fmt.Sprintf("Linked to %s", q.Number),
			QuoteNumber: q.Number,
			CreatedAt:   now,
		})
		return next, SyncResult{Action: SyncActionCreated, QuoteID: q.ID, Deal: deal, To: target}
	}

	updated := applyQuote(existing, q)

	if from == target {
		if sameQuoteFields(existing, updated) {
			return board, SyncResult{Action: SyncActionUnchanged, QuoteID: q.ID, Deal: existing, From: from, To: target}
		}
		next, _ := board.Replace(from, updated)
		return next, SyncResult{Action: SyncActionUpdated, QuoteID: q.ID, Deal: updated, From: from, To: target}
	}

	next, _ := board.Remove(existing.ID, from)
	moved := now
	updated.MovedAt = &moved
	next, updated = next.Append(target, updated)
	return next, SyncResult{Action: SyncActionMoved, QuoteID: q.ID, Deal: updated, From: from, To: target}
}

// ReconcileAll reconciles every quote in order against the evolving board.
func ReconcileAll(board Board, quotes []QuoteSnapshot, now time.Time, newID func() snowflake.ID) (Board, []SyncResult) {
	results := make([]SyncResult, 0, len(quotes))
	for _, q := range quotes {
		var r SyncResult
		board, r = Reconcile(board, q, now, newID)
		results = append(results, r)
	}
	return board, results
}

// Move relocates a deal between stages and stamps MovedAt. Moving to the
// stage it is already in leaves the board as is.
func Move(board Board, dealID snowflake.ID, from, to StageID, now time.Time) (Board, Deal, error) {
	if !from.Valid() || !to.Valid() {
		return board, Deal{}, ErrInvalidStage
	}
	deal, ok := board.Find(dealID, from)
	if !ok {
		return board, Deal{}, ErrNotFound
	}
	if from == to {
		return board, deal, nil
	}

	next, _ := board.Remove(dealID, from)
	moved := now
	deal.MovedAt = &moved
	next, deal = next.Append(to, deal)
	return next, deal, nil
}

// applyQuote overwrites only the quote-owned fields of a deal.
func applyQuote(d Deal, q QuoteSnapshot) Deal {
	if name := strings.TrimSpace(q.ClientName); name != "" {
		d.Name = name
	}
	d.Company = strings.TrimSpace(q.ClientName)
	d.Value = q.Total
	d.QuoteNumber = q.Number
	return d
}

func sameQuoteFields(a, b Deal) bool {
	return a.Name == b.Name &&
		a.Company == b.Company &&
		a.Value.Equal(b.Value) &&
		a.QuoteNumber == b.QuoteNumber
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
