// Package domain contains the invitation model and its lifecycle rules.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
)

const tokenBytes = 32

// Invitation is a pending onboarding request. At most one of CooperativeID
// and DistrictID is set; both nil means a plain user invite.
type Invitation struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	Email          string        `gorm:"type:text;not null;index" json:"email"`
	CooperativeID  *snowflake.ID `gorm:"index" json:"cooperative_id,omitempty"`
	DistrictID     *snowflake.ID `gorm:"index" json:"district_id,omitempty"`
	InvitedBy      snowflake.ID  `gorm:"column:invited_by;not null;index" json:"invited_by"`
	StatusID       Status        `gorm:"column:status_id;type:text;not null" json:"status_id"`
	Token          string        `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ExpirationDate *time.Time    `gorm:"column:expiration_date" json:"expiration_date,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }

// Expired reports whether the invitation lapsed before now. A nil
// expiration date never expires.
func (i Invitation) Expired(now time.Time) bool {
	return i.ExpirationDate != nil && i.ExpirationDate.Before(now)
}

// MarkAccepted transitions the invitation to Accepted.
func (i *Invitation) MarkAccepted(now time.Time) {
	i.StatusID = StatusAccepted
	i.UpdatedAt = now
}

// NewToken returns a fresh random invitation token: 32 bytes, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
