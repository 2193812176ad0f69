// Package domain contains persistence models for cooperatives and districts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Type discriminates the two organization flavors on the wire.
const (
	TypeCooperative = "cooperative"
	TypeDistrict    = "district"
)

// Cooperative is a purchasing group that districts may belong to.
type Cooperative struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Code      string            `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Address   *string           `gorm:"type:text" json:"address,omitempty"`
	City      *string           `gorm:"type:text" json:"city,omitempty"`
	State     *string           `gorm:"type:text" json:"state,omitempty"`
	Zip       *string           `gorm:"type:text" json:"zip,omitempty"`
	Phone     *string           `gorm:"type:text" json:"phone,omitempty"`
	Email     *string           `gorm:"type:text" json:"email,omitempty"`
	StatusID  Status            `gorm:"column:status_id;type:text;not null" json:"status_id"`
	IsDeleted bool              `gorm:"column:is_deleted;not null;default:false" json:"-"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Cooperative) TableName() string { return "cooperatives" }

// District is a school district, optionally belonging to a cooperative.
type District struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"type:text;not null" json:"name"`
	CooperativeID *snowflake.ID `gorm:"index" json:"cooperative_id,omitempty"`
	Address       *string       `gorm:"type:text" json:"address,omitempty"`
	City          *string       `gorm:"type:text" json:"city,omitempty"`
	State         *string       `gorm:"type:text" json:"state,omitempty"`
	Zip           *string       `gorm:"type:text" json:"zip,omitempty"`
	Phone         *string       `gorm:"type:text" json:"phone,omitempty"`
	Email         *string       `gorm:"type:text" json:"email,omitempty"`
	StatusID      Status        `gorm:"column:status_id;type:text;not null" json:"status_id"`
	IsDeleted     bool          `gorm:"column:is_deleted;not null;default:false" json:"-"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (District) TableName() string { return "districts" }

// ContactPatch is the partial field set updateable on either organization
// flavor. Nil fields are left untouched.
type ContactPatch struct {
	Address *string
	City    *string
	State   *string
	Zip     *string
	Phone   *string
	Email   *string
}

// Update returns a copy with the patch applied. The receiver is not mutated.
func (c Cooperative) Update(patch ContactPatch) Cooperative {
	next := c
	applyPatch(&next.Address, &next.City, &next.State, &next.Zip, &next.Phone, &next.Email, patch)
	return next
}

// Update returns a copy with the patch applied. The receiver is not mutated.
func (d District) Update(patch ContactPatch) District {
	next := d
	applyPatch(&next.Address, &next.City, &next.State, &next.Zip, &next.Phone, &next.Email, patch)
	return next
}

func applyPatch(address, city, state, zip, phone, email **string, patch ContactPatch) {
	if patch.Address != nil {
		*address = patch.Address
	}
	if patch.City != nil {
		*city = patch.City
	}
	if patch.State != nil {
		*state = patch.State
	}
	if patch.Zip != nil {
		*zip = patch.Zip
	}
	if patch.Phone != nil {
		*phone = patch.Phone
	}
	if patch.Email != nil {
		*email = patch.Email
	}
}
