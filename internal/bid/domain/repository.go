package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bid *Bid) error
	FindByID(ctx context.Context, id snowflake.ID) (*Bid, error)
	ListByDistrict(ctx context.Context, districtID snowflake.ID) ([]Bid, error)
}
