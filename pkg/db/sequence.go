package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is a named counter that only moves forward. Deleting the row
// that holds the highest number never makes that number available again.
type Sequence struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	LastValue int64  `gorm:"not null"`
}

func (Sequence) TableName() string { return "number_sequences" }

// NextValue advances the named sequence and returns the new value. floor is
// the highest value already in use, so a counter that lags behind restored
// or pre-existing rows catches up. Call it inside the transaction that
// writes the numbered row.
func NextValue(ctx context.Context, conn *gorm.DB, name string, floor int64) (int64, error) {
	var current Sequence
	err := conn.WithContext(ctx).
		Where("name = ?", name).
		Limit(1).
		Find(&current).Error
	if err != nil {
		return 0, err
	}

	next := max(current.LastValue, floor) + 1
	err = conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_value"}),
		}).
		Create(&Sequence{Name: name, LastValue: next}).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
