package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/rbac/domain"
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

func (r *repository) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("name = ?", name).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) CreateScope(ctx context.Context, scope *domain.Scope) error {
	return r.db.WithContext(ctx).Create(scope).Error
}

func (r *repository) CreateUserRole(ctx context.Context, grant *domain.UserRole) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *repository) ListGrantsByUser(ctx context.Context, userID snowflake.ID) ([]domain.UserRole, error) {
	var grants []domain.UserRole
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Role.Category").
		Preload("Scope").
		Where("user_id = ?", userID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}
