package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invitation *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) (*Invitation, error)
	Update(ctx context.Context, invitation Invitation) error
}
