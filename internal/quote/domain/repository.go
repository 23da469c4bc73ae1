package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
	Search string
	Limit  int
}

type Repository interface {
	NextSequence(ctx context.Context, db *gorm.DB) (int64, error)
	// Insert writes the quote together with its lines.
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	// Update writes the quote header and replaces its lines.
	Update(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Quote, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Quote, error)
	FindLines(ctx context.Context, db *gorm.DB, quoteIDs []snowflake.ID) ([]Line, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

// PipelineSyncer mirrors quote changes onto the sales board.
type PipelineSyncer interface {
	SyncQuote(ctx context.Context, quoteID snowflake.ID) error
	ReleaseQuote(ctx context.Context, quoteID snowflake.ID) error
}

// ClientContact is the part of a client record copied onto a quote.
type ClientContact struct {
	Name         string
	Email        string
	Phone        string
	Jurisdiction string
}

// ClientDirectory resolves a client id into contact details.
type ClientDirectory interface {
	Contact(ctx context.Context, id snowflake.ID) (*ClientContact, error)
}

// HomeJurisdiction yields the default jurisdiction for new quotes.
type HomeJurisdiction interface {
	HomeJurisdiction(ctx context.Context) (string, error)
}
