package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Revoke(ctx context.Context, id snowflake.ID) error
}

type CodeRepository interface {
	CreateVerificationCode(ctx context.Context, code *EmailVerificationCode) error
	FindVerificationCode(ctx context.Context, userID snowflake.ID, code string) (*EmailVerificationCode, error)
	UpdateVerificationCode(ctx context.Context, code EmailVerificationCode) error

	CreateResetCode(ctx context.Context, code *PasswordResetCode) error
	FindResetCode(ctx context.Context, userID snowflake.ID, code string) (*PasswordResetCode, error)
	UpdateResetCode(ctx context.Context, code PasswordResetCode) error
}
