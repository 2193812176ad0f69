package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	CreateScope(ctx context.Context, scope *Scope) error
	CreateUserRole(ctx context.Context, grant *UserRole) error
	ListGrantsByUser(ctx context.Context, userID snowflake.ID) ([]UserRole, error)
}
