package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	"github.com/procurehq/procure/internal/user/domain"
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

func (r *repository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) Update(ctx context.Context, user domain.User) error {
	return r.db.WithContext(ctx).Save(&user).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND is_deleted = ?", email, false).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindDetailByID(ctx context.Context, id snowflake.ID) (*domain.Detail, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var grants []rbacdomain.UserRole
	err = r.db.WithContext(ctx).
		Preload("Role").
		Preload("Role.Category").
		Preload("Scope").
		Where("user_id = ?", id).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}

	return &domain.Detail{User: *user, Grants: grants}, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.User, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("is_deleted = ?", false)

	if filter.DistrictID != nil {
		query = query.Where("district_id = ?", *filter.DistrictID)
	}
	if filter.CooperativeID != nil {
		query = query.Where("cooperative_id = ?", *filter.CooperativeID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where(
			"LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?)",
			like, like, like,
		)
	}
	if filter.AfterID != nil {
		query = query.Where("id > ?", *filter.AfterID)
	}
	if filter.Limit > 0 {
		// over-fetch one row so the caller can detect another page
		query = query.Limit(filter.Limit + 1)
	}

	var users []*domain.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) ListBidManagersByDistrict(ctx context.Context, districtID snowflake.ID) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("users.is_deleted = ? AND users.status_id = ?", false, domain.StatusActive).
		Where("users.district_id = ?", districtID).
		Where("roles.name = ?", rbacdomain.RoleBidManager).
		Distinct("users.*").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) CreateBulkUpload(ctx context.Context, upload *domain.BulkUpload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *repository) UpdateBulkUpload(ctx context.Context, upload domain.BulkUpload) error {
	return r.db.WithContext(ctx).Save(&upload).Error
}
