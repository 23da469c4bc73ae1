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
	StatusDraft    Status = "draft"
	StatusIssued   Status = "issued"
	StatusOrdered  Status = "ordered"
	StatusReceived Status = "received"
	StatusPaid     Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusOrdered, StatusReceived, StatusPaid:
		return true
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// PurchaseOrder buys what a quote line sells. QuoteID and LineID are weak
// references; a PO survives the deletion of its quote.
type PurchaseOrder struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	Sequence      int64           `gorm:"not null;uniqueIndex:ux_purchase_orders_sequence" json:"sequence"`
	Number        string          `gorm:"type:varchar(32);not null" json:"number"`
	QuoteID       *snowflake.ID   `gorm:"index:ix_purchase_orders_quote" json:"quote_id,omitempty"`
	LineID        *snowflake.ID   `json:"line_id,omitempty"`
	Vendor        string          `gorm:"type:varchar(255);not null" json:"vendor"`
	VendorContact string          `gorm:"type:varchar(255)" json:"vendor_contact"`
	ShipToAddress string          `gorm:"type:text" json:"ship_to_address"`
	Description   string          `gorm:"type:text" json:"description"`
	Quantity      decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quantity"`
	UnitCost      decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_cost"`
	Status        Status          `gorm:"type:varchar(16);not null" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	IssuedAt      *time.Time      `json:"issued_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

func (po PurchaseOrder) Cost() decimal.Decimal {
	return po.Quantity.Mul(po.UnitCost)
}

func FormatNumber(sequence int64) string {
	return fmt.Sprintf("PO-%04d", sequence)
}

// QuoteLineRef is a quote line as seen from purchasing.
type QuoteLineRef struct {
	QuoteID     snowflake.ID
	QuoteNumber string
	ClientName  string
	LineID      snowflake.ID
	Category    taxdomain.Category
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

func (l QuoteLineRef) Sell() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
