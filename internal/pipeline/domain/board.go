package domain

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Column struct {
	Stage Stage  `json:"stage"`
	Deals []Deal `json:"deals"`
}

// Board is a value: every operation returns a new Board and leaves the
// receiver untouched.
type Board struct {
	Columns []Column `json:"columns"`
}

// NewBoard lays deals out in the fixed stage order, each column sorted by
// position. Deals carrying an unknown stage are placed in lead.
func NewBoard(deals []Deal) Board {
	byStage := make(map[StageID][]Deal, len(stages))
	for _, d := range deals {
		stage := d.Stage
		if !stage.Valid() {
			stage = StageLead
			d.Stage = stage
		}
		byStage[stage] = append(byStage[stage], d)
	}

	b := Board{Columns: make([]Column, 0, len(stages))}
	for _, st := range stages {
		col := byStage[st.ID]
		if col == nil {
			col = []Deal{}
		}
		sort.SliceStable(col, func(i, j int) bool {
			if col[i].Position != col[j].Position {
				return col[i].Position < col[j].Position
			}
			if !col[i].CreatedAt.Equal(col[j].CreatedAt) {
				return col[i].CreatedAt.Before(col[j].CreatedAt)
			}
			return col[i].ID < col[j].ID
		})
		b.Columns = append(b.Columns, Column{Stage: st, Deals: col})
	}
	return b
}

func (b Board) Clone() Board {
	out := Board{Columns: make([]Column, len(b.Columns))}
	for i, col := range b.Columns {
		deals := make([]Deal, len(col.Deals))
		copy(deals, col.Deals)
		out.Columns[i] = Column{Stage: col.Stage, Deals: deals}
	}
	return out
}

func (b Board) Column(stage StageID) (Column, bool) {
	for _, col := range b.Columns {
		if col.Stage.ID == stage {
			return col, true
		}
	}
	return Column{}, false
}

// Total sums the value of the deals in the column.
func (c Column) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range c.Deals {
		total = total.Add(d.Value)
	}
	return total
}

// Deals flattens the board in stage order.
func (b Board) Deals() []Deal {
	var out []Deal
	for _, col := range b.Columns {
		out = append(out, col.Deals...)
	}
	return out
}

func (b Board) Len() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Deals)
	}
	return n
}

// FindLinked returns the first deal linked to quoteID, scanning stages in
// board order.
func (b Board) FindLinked(quoteID snowflake.ID) (Deal, StageID, bool) {
	for _, col := range b.Columns {
		for _, d := range col.Deals {
			if d.LinkedTo(quoteID) {
				return d, col.Stage.ID, true
			}
		}
	}
	return Deal{}, "", false
}

// Find locates a deal by id within the given stage.
func (b Board) Find(dealID snowflake.ID, stage StageID) (Deal, bool) {
	col, ok := b.Column(stage)
	if !ok {
		return Deal{}, false
	}
	for _, d := range col.Deals {
		if d.ID == dealID {
			return d, true
		}
	}
	return Deal{}, false
}

// LinkViolations lists quote ids carried by more than one deal.
func (b Board) LinkViolations() []snowflake.ID {
	seen := make(map[snowflake.ID]int)
	var out []snowflake.ID
	for _, col := range b.Columns {
		for _, d := range col.Deals {
			if d.QuoteID == nil {
				continue
			}
			seen[*d.QuoteID]++
			if seen[*d.QuoteID] == 2 {
				out = append(out, *d.QuoteID)
			}
		}
	}
	return out
}

// Append adds d to the end of stage, assigning the next position.
func (b Board) Append(stage StageID, d Deal) (Board, Deal) {
	out := b.Clone()
	for i := range out.Columns {
		if out.Columns[i].Stage.ID != stage {
			continue
		}
		d.Stage = stage
		d.Position = nextPosition(out.Columns[i].Deals)
		out.Columns[i].Deals = append(out.Columns[i].Deals, d)
	}
	return out, d
}

// Remove drops the deal from stage. ok is false when it was not there.
func (b Board) Remove(dealID snowflake.ID, stage StageID) (Board, bool) {
	out := b.Clone()
	for i := range out.Columns {
		if out.Columns[i].Stage.ID != stage {
			continue
		}
		deals := out.Columns[i].Deals
		for j := range deals {
			if deals[j].ID == dealID {
				out.Columns[i].Deals = append(deals[:j:j], deals[j+1:]...)
				return out, true
			}
		}
	}
	return b, false
}

// Replace swaps the deal with the same id in stage, keeping its slot.
func (b Board) Replace(stage StageID, d Deal) (Board, bool) {
	out := b.Clone()
	for i := range out.Columns {
		if out.Columns[i].Stage.ID != stage {
			continue
		}
		for j := range out.Columns[i].Deals {
			if out.Columns[i].Deals[j].ID == d.ID {
				out.Columns[i].Deals[j] = d
				return out, true
			}
		}
	}
	return b, false
}

func nextPosition(deals []Deal) int {
	next := 0
	for _, d := range deals {
		if d.Position >= next {
			next = d.Position + 1
		}
	}
	return next
}
