// Package domain contains session and one-time-code models for the auth flow.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Session is a persisted login session. Only the token hash is stored.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex" json:"-"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index" json:"expires_at"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// EmailVerificationCode is a short-lived one-time code proving mailbox
// ownership.
type EmailVerificationCode struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Code      string       `gorm:"type:text;not null;index" json:"-"`
	Used      bool         `gorm:"not null;default:false" json:"used"`
	IsDeleted bool         `gorm:"column:is_deleted;not null;default:false" json:"-"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (EmailVerificationCode) TableName() string { return "email_verification_codes" }

// Valid reports whether the code can still be redeemed.
func (c EmailVerificationCode) Valid(now time.Time) bool {
	return !c.Used && !c.IsDeleted && now.Before(c.ExpiresAt)
}

// MarkUsed consumes the code.
func (c *EmailVerificationCode) MarkUsed() {
	c.Used = true
}

// PasswordResetCode is a short-lived one-time code authorizing a password
// change.
type PasswordResetCode struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Code      string       `gorm:"type:text;not null;index" json:"-"`
	Used      bool         `gorm:"not null;default:false" json:"used"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PasswordResetCode) TableName() string { return "password_reset_codes" }

// Valid reports whether the code can still be redeemed.
func (c PasswordResetCode) Valid(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}

// MarkUsed consumes the code.
func (c *PasswordResetCode) MarkUsed() {
	c.Used = true
}
