package domain

import "time"

// SettingsID is the primary key of the single settings row.
const SettingsID int64 = 1

type Settings struct {
	ID               int64     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Address          string    `gorm:"type:text" json:"address"`
	Phone            string    `gorm:"type:varchar(64)" json:"phone"`
	Email            string    `gorm:"type:varchar(255)" json:"email"`
	Website          string    `gorm:"type:varchar(255)" json:"website"`
	HomeJurisdiction string    `gorm:"type:varchar(8);not null" json:"home_jurisdiction"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (Settings) TableName() string { return "company_settings" }
