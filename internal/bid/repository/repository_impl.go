package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/bid/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bid *domain.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Bid, error) {
	var bid domain.Bid
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&bid).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *repository) ListByDistrict(ctx context.Context, districtID snowflake.ID) ([]domain.Bid, error) {
	var bids []domain.Bid
	err := r.db.WithContext(ctx).
		Where("district_id = ? AND is_deleted = ?", districtID, false).
		Order("created_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}
