package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows user listings. Soft-deleted users are always excluded.
type ListFilter struct {
	DistrictID    *snowflake.ID
	CooperativeID *snowflake.ID
	Query         string
	Limit         int
	AfterID       *snowflake.ID
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindDetailByID(ctx context.Context, id snowflake.ID) (*Detail, error)
	List(ctx context.Context, filter ListFilter) ([]*User, error)
	ListBidManagersByDistrict(ctx context.Context, districtID snowflake.ID) ([]*User, error)

	CreateBulkUpload(ctx context.Context, upload *BulkUpload) error
	UpdateBulkUpload(ctx context.Context, upload BulkUpload) error
}
