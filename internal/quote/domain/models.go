package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
)

type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusWon   Status = "won"
	StatusLost  Status = "lost"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusWon, StatusLost:
		return true
	default:
		return false
	}
}

// Open reports whether the quote still awaits a decision.
func (s Status) Open() bool {
	return s == StatusDraft || s == StatusSent
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Quote struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	Sequence     int64           `gorm:"not null;uniqueIndex:ux_quotes_sequence" json:"sequence"`
	Number       string          `gorm:"type:varchar(32);not null;uniqueIndex:ux_quotes_number" json:"number"`
	ClientID     *snowflake.ID   `json:"client_id,omitempty"`
	ClientName   string          `gorm:"type:varchar(255)" json:"client_name"`
	ClientEmail  string          `gorm:"type:varchar(255)" json:"client_email"`
	ClientPhone  string          `gorm:"type:varchar(64)" json:"client_phone"`
	Jurisdiction string          `gorm:"type:varchar(8);not null" json:"jurisdiction"`
	Status       Status          `gorm:"type:varchar(16);not null" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal"`
	Tax          decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"tax"`
	Total        decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total"`
	Lines        []Line          `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

// Line is one priced row of a quote. Position keeps the entry order.
type Line struct {
	ID          snowflake.ID       `gorm:"primaryKey" json:"id"`
	QuoteID     snowflake.ID       `gorm:"not null;index:ix_quote_lines_quote,priority:1" json:"quote_id"`
	Position    int                `gorm:"not null;index:ix_quote_lines_quote,priority:2" json:"position"`
	Category    taxdomain.Category `gorm:"type:varchar(16);not null" json:"category"`
	Description string             `gorm:"type:text" json:"description"`
	Unit        string             `gorm:"type:varchar(32)" json:"unit"`
	Quantity    decimal.Decimal    `gorm:"type:numeric(14,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal    `gorm:"type:numeric(14,4);not null" json:"unit_price"`
}

func (Line) TableName() string { return "quote_lines" }

func (l Line) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// FormatNumber renders the display number for a sequence, e.g. Q-0001.
func FormatNumber(sequence int64) string {
	return fmt.Sprintf("Q-%04d", sequence)
}

// DisplayName is the client name, or the quote number when there is none.
func (q Quote) DisplayName() string {
	if name := strings.TrimSpace(q.ClientName); name != "" {
		return name
	}
	return q.Number
}
