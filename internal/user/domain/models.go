// Package domain contains the user account model and bulk-upload audit record.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// User is a system account. Membership is exclusive: at most one of
// CooperativeID and DistrictID is set.
type User struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email         string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash  string            `gorm:"type:text;not null" json:"-"`
	FirstName     string            `gorm:"type:text" json:"first_name"`
	LastName      string            `gorm:"type:text" json:"last_name"`
	EmailVerified bool              `gorm:"column:email_verified;not null;default:false" json:"email_verified"`
	StatusID      Status            `gorm:"column:status_id;type:text;not null" json:"status_id"`
	IsDeleted     bool              `gorm:"column:is_deleted;not null;default:false" json:"-"`
	CooperativeID *snowflake.ID     `gorm:"index" json:"cooperative_id,omitempty"`
	DistrictID    *snowflake.ID     `gorm:"index" json:"district_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Detail is a user plus their role grants, the shape every authorization
// gate works from.
type Detail struct {
	User
	Grants []rbacdomain.UserRole
}

// AdminRoles returns the names of the user's admin-category roles.
func (d Detail) AdminRoles() []string {
	return rbacdomain.RoleNames(d.Grants, rbacdomain.CategoryAdmin)
}

// BidRoles returns the names of the user's bid-category roles.
func (d Detail) BidRoles() []string {
	return rbacdomain.RoleNames(d.Grants, rbacdomain.CategoryBid)
}

// UserManagedBid links a user to a bid they manage.
type UserManagedBid struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_user_bid,priority:1" json:"user_id"`
	BidID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_user_bid,priority:2" json:"bid_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (UserManagedBid) TableName() string { return "user_managed_bids" }

type BulkUploadStatus string

const (
	BulkUploadProcessing BulkUploadStatus = "PROCESSING"
	BulkUploadCompleted  BulkUploadStatus = "COMPLETED"
)

// BulkUpload is the audit record of one CSV invitation batch.
type BulkUpload struct {
	ID            snowflake.ID     `gorm:"primaryKey" json:"id"`
	FileName      string           `gorm:"type:text;not null" json:"file_name"`
	Status        BulkUploadStatus `gorm:"type:text;not null" json:"status"`
	TotalRows     int              `gorm:"not null" json:"total_rows"`
	ProcessedRows int              `gorm:"not null" json:"processed_rows"`
	FailedRows    int              `gorm:"not null" json:"failed_rows"`
	ErrorText     string           `gorm:"type:text" json:"error_text,omitempty"`
	UploadedBy    snowflake.ID     `gorm:"column:uploaded_by;not null;index" json:"uploaded_by"`
	CreatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BulkUpload) TableName() string { return "bulk_uploads" }
