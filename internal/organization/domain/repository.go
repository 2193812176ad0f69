package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCooperative(ctx context.Context, coop *Cooperative) error
	FindCooperativeByID(ctx context.Context, id snowflake.ID) (*Cooperative, error)
	FindCooperativeByName(ctx context.Context, name string) (*Cooperative, error)
	UpdateCooperative(ctx context.Context, coop Cooperative) error
	ListCooperatives(ctx context.Context) ([]Cooperative, error)

	CreateDistrict(ctx context.Context, district *District) error
	FindDistrictByID(ctx context.Context, id snowflake.ID) (*District, error)
	FindDistrictByName(ctx context.Context, name string) (*District, error)
	UpdateDistrict(ctx context.Context, district District) error
	ListDistricts(ctx context.Context) ([]District, error)
}
