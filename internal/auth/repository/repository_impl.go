package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/auth/domain"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

type codeRepository struct {
	db *gorm.DB
}

func New(db *gorm.DB) (domain.SessionRepository, domain.CodeRepository) {
	return &sessionRepository{db: db}, &codeRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("session_token_hash = ?", tokenHash).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id snowflake.ID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("revoked_at", now).Error
}

func (r *codeRepository) CreateVerificationCode(ctx context.Context, code *domain.EmailVerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *codeRepository) FindVerificationCode(ctx context.Context, userID snowflake.ID, code string) (*domain.EmailVerificationCode, error) {
	var record domain.EmailVerificationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND is_deleted = ?", userID, code, false).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *codeRepository) UpdateVerificationCode(ctx context.Context, code domain.EmailVerificationCode) error {
	return r.db.WithContext(ctx).Save(&code).Error
}

func (r *codeRepository) CreateResetCode(ctx context.Context, code *domain.PasswordResetCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *codeRepository) FindResetCode(ctx context.Context, userID snowflake.ID, code string) (*domain.PasswordResetCode, error) {
	var record domain.PasswordResetCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ?", userID, code).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *codeRepository) UpdateResetCode(ctx context.Context, code domain.PasswordResetCode) error {
	return r.db.WithContext(ctx).Save(&code).Error
}
