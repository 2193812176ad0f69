package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/procurehq/procure/internal/auth/domain"
	"github.com/procurehq/procure/internal/auth/password"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	"github.com/procurehq/procure/internal/providers/email"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionTokenBytes = 32

type service struct {
	log      *zap.Logger
	cfg      config.Config
	clk      clock.Clock
	sessions domain.SessionRepository
	codes    domain.CodeRepository
	users    userdomain.Repository
	mailer   email.Provider
	genID    *snowflake.Node
}

func NewService(
	log *zap.Logger,
	cfg config.Config,
	clk clock.Clock,
	sessions domain.SessionRepository,
	codes domain.CodeRepository,
	users userdomain.Repository,
	mailer email.Provider,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:      log.Named("auth.service"),
		cfg:      cfg,
		clk:      clk,
		sessions: sessions,
		codes:    codes,
		users:    users,
		mailer:   mailer,
		genID:    genID,
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !password.Verify(user.PasswordHash, req.Password) {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	if user.StatusID != userdomain.StatusActive {
		return nil, apperror.Unauthorized("account is not active")
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	expiresAt := now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour)
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		RawToken:  rawToken,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
	}, nil
}

func (s *service) Logout(ctx context.Context, rawToken string) error {
	session, err := s.sessions.FindByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.sessions.Revoke(ctx, session.ID)
}

func (s *service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	if rawToken == "" {
		return nil, apperror.Unauthorized("missing session")
	}
	session, err := s.sessions.FindByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid session")
		}
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, apperror.Unauthorized("session revoked")
	}
	if !s.clk.Now().Before(session.ExpiresAt) {
		return nil, apperror.Unauthorized("session expired")
	}
	return session, nil
}

func (s *service) RequestEmailVerification(ctx context.Context, userID snowflake.ID) (*domain.EmailVerificationCode, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	now := s.clk.Now()
	code := &domain.EmailVerificationCode{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		Code:      uuid.NewString(),
		ExpiresAt: now.Add(time.Duration(s.cfg.CodeTTLMinutes) * time.Minute),
		CreatedAt: now,
	}
	if err := s.codes.CreateVerificationCode(ctx, code); err != nil {
		return nil, err
	}

	if err := s.mailer.SendTemplate(ctx, []string{user.Email}, email.TemplateVerifyEmail, email.VerifyEmailData{
		CompanyName: s.cfg.CompanyName,
		FirstName:   user.FirstName,
		Code:        code.Code,
	}); err != nil {
		return nil, err
	}

	return code, nil
}

func (s *service) VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	code, err := s.codes.FindVerificationCode(ctx, user.ID, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.BadRequest("invalid verification code")
		}
		return err
	}
	if !code.Valid(s.clk.Now()) {
		return apperror.BadRequest("verification code expired or already used")
	}

	code.MarkUsed()
	if err := s.codes.UpdateVerificationCode(ctx, *code); err != nil {
		return err
	}

	user.EmailVerified = true
	return s.users.Update(ctx, *user)
}

func (s *service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// do not reveal whether the address exists
			return nil
		}
		return err
	}

	now := s.clk.Now()
	code := &domain.PasswordResetCode{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		Code:      uuid.NewString(),
		ExpiresAt: now.Add(time.Duration(s.cfg.CodeTTLMinutes) * time.Minute),
		CreatedAt: now,
	}
	if err := s.codes.CreateResetCode(ctx, code); err != nil {
		return err
	}

	return s.mailer.SendTemplate(ctx, []string{user.Email}, email.TemplatePasswordReset, email.PasswordResetData{
		CompanyName: s.cfg.CompanyName,
		FirstName:   user.FirstName,
		ResetLink:   s.cfg.FrontendBaseURL + "/reset-password?code=" + code.Code,
	})
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	code, err := s.codes.FindResetCode(ctx, user.ID, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.BadRequest("invalid reset code")
		}
		return err
	}
	if !code.Valid(s.clk.Now()) {
		return apperror.BadRequest("reset code expired or already used")
	}

	hashed, err := password.Hash(req.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperror.BadRequest("invalid password")
	}

	code.MarkUsed()
	if err := s.codes.UpdateResetCode(ctx, *code); err != nil {
		return err
	}

	user.PasswordHash = hashed
	return s.users.Update(ctx, *user)
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
