package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type StageID string

const (
	StageLead      StageID = "lead"
	StageQuoted    StageID = "quoted"
	StageSent      StageID = "sent"
	StageNegotiate StageID = "negotiate"
	StageWon       StageID = "won"
	StageLost      StageID = "lost"
)

type Stage struct {
	ID    StageID `json:"id"`
	Label string  `json:"label"`
}

// stages is the fixed board layout. Scans for linked deals walk it in order.
var stages = []Stage{
	{ID: StageLead, Label: "Lead"},
	{ID: StageQuoted, Label: "Quoted"},
	{ID: StageSent, Label: "Proposal Sent"},
	{ID: StageNegotiate, Label: "Negotiating"},
	{ID: StageWon, Label: "Closed Won"},
	{ID: StageLost, Label: "Closed Lost"},
}

func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

func (s StageID) Valid() bool {
	for _, st := range stages {
		if st.ID == s {
			return true
		}
	}
	return false
}

// StageForStatus maps a quote status to the stage its deal belongs in.
// Unmapped statuses land in quoted.
func StageForStatus(status string) StageID {
	switch status {
	case "draft":
		return StageQuoted
	case "sent":
		return StageSent
	case "won":
		return StageWon
	case "lost":
		return StageLost
	default:
		return StageQuoted
	}
}

// Deal is a card on the board. QuoteID is a weak link: the quote may have
// been deleted while the deal remains.
type Deal struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Stage       StageID         `gorm:"type:varchar(16);not null;index:ix_deals_stage,priority:1" json:"stage"`
	Position    int             `gorm:"not null;index:ix_deals_stage,priority:2" json:"position"`
	QuoteID     *snowflake.ID   `gorm:"index" json:"quote_id,omitempty"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Company     string          `gorm:"type:varchar(255)" json:"company"`
	Value       decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"value"`
	Note        string          `gorm:"type:text" json:"note"`
	QuoteNumber string          `gorm:"type:varchar(32)" json:"quote_number,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	MovedAt     *time.Time      `json:"moved_at,omitempty"`
}

func (Deal) TableName() string { return "deals" }

func (d Deal) LinkedTo(quoteID snowflake.ID) bool {
	return d.QuoteID != nil && *d.QuoteID == quoteID
}

// QuoteSnapshot is the part of a quote the board mirrors.
type QuoteSnapshot struct {
	ID         snowflake.ID
	Number     string
	ClientName string
	Status     string
	Total      decimal.Decimal
}
