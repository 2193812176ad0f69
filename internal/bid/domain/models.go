// Package domain contains procurement bid models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusAwarded   Status = "AWARDED"
	StatusClosed    Status = "CLOSED"
)

// Bid is a procurement solicitation owned by a district.
type Bid struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	Number     string       `gorm:"type:text;not null;uniqueIndex" json:"number"`
	DistrictID snowflake.ID `gorm:"not null;index" json:"district_id"`
	StatusID   Status       `gorm:"column:status_id;type:text;not null" json:"status_id"`
	StartDate  *time.Time   `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate    *time.Time   `gorm:"column:end_date" json:"end_date,omitempty"`
	IsDeleted  bool         `gorm:"column:is_deleted;not null;default:false" json:"-"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Bid) TableName() string { return "bids" }

// BidItem is one line item on a bid.
type BidItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	BidID       snowflake.ID `gorm:"not null;index" json:"bid_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	Quantity    int          `gorm:"not null;default:0" json:"quantity"`
	Unit        *string      `gorm:"type:text" json:"unit,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (BidItem) TableName() string { return "bid_items" }
