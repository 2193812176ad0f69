package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/organization/domain"
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

func (r *repository) CreateCooperative(ctx context.Context, coop *domain.Cooperative) error {
	return r.db.WithContext(ctx).Create(coop).Error
}

func (r *repository) FindCooperativeByID(ctx context.Context, id snowflake.ID) (*domain.Cooperative, error) {
	var coop domain.Cooperative
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&coop).Error
	if err != nil {
		return nil, err
	}
	return &coop, nil
}

func (r *repository) FindCooperativeByName(ctx context.Context, name string) (*domain.Cooperative, error) {
	var coop domain.Cooperative
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_deleted = ?", name, false).
		First(&coop).Error
	if err != nil {
		return nil, err
	}
	return &coop, nil
}

func (r *repository) UpdateCooperative(ctx context.Context, coop domain.Cooperative) error {
	return r.db.WithContext(ctx).Save(&coop).Error
}

func (r *repository) ListCooperatives(ctx context.Context) ([]domain.Cooperative, error) {
	var coops []domain.Cooperative
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at ASC").
		Find(&coops).Error
	if err != nil {
		return nil, err
	}
	return coops, nil
}

func (r *repository) CreateDistrict(ctx context.Context, district *domain.District) error {
	return r.db.WithContext(ctx).Create(district).Error
}

func (r *repository) FindDistrictByID(ctx context.Context, id snowflake.ID) (*domain.District, error) {
	var district domain.District
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&district).Error
	if err != nil {
		return nil, err
	}
	return &district, nil
}

func (r *repository) FindDistrictByName(ctx context.Context, name string) (*domain.District, error) {
	var district domain.District
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_deleted = ?", name, false).
		First(&district).Error
	if err != nil {
		return nil, err
	}
	return &district, nil
}

func (r *repository) UpdateDistrict(ctx context.Context, district domain.District) error {
	return r.db.WithContext(ctx).Save(&district).Error
}

func (r *repository) ListDistricts(ctx context.Context) ([]domain.District, error) {
	var districts []domain.District
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at ASC").
		Find(&districts).Error
	if err != nil {
		return nil, err
	}
	return districts, nil
}
