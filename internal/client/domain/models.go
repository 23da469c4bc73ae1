package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Client struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"type:varchar(255);not null" json:"name"`
	Company      string            `gorm:"type:varchar(255)" json:"company"`
	Email        string            `gorm:"type:varchar(255)" json:"email"`
	Phone        string            `gorm:"type:varchar(64)" json:"phone"`
	Address      string            `gorm:"type:text" json:"address"`
	Jurisdiction string            `gorm:"type:varchar(8)" json:"jurisdiction"`
	Notes        string            `gorm:"type:text" json:"notes"`
	Metadata     datatypes.JSONMap `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
