package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)

	RequestEmailVerification(ctx context.Context, userID snowflake.ID) (*EmailVerificationCode, error)
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) error

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	RawToken  string
	ExpiresAt time.Time
	UserID    snowflake.ID
}

type VerifyEmailRequest struct {
	Email string
	Code  string
}

type ResetPasswordRequest struct {
	Email       string
	Code        string
	NewPassword string
}
