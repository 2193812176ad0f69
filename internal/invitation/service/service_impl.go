package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/procurehq/procure/internal/auth/password"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	"github.com/procurehq/procure/internal/invitation/domain"
	orgdomain "github.com/procurehq/procure/internal/organization/domain"
	"github.com/procurehq/procure/internal/providers/email"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log    *zap.Logger
	cfg    config.Config
	db     *gorm.DB
	clk    clock.Clock
	repo   domain.Repository
	orgs   orgdomain.Repository
	users  userdomain.Repository
	rbac   rbacdomain.Repository
	mailer email.Provider
	genID  *snowflake.Node
}

func NewService(
	log *zap.Logger,
	cfg config.Config,
	db *gorm.DB,
	clk clock.Clock,
	repo domain.Repository,
	orgs orgdomain.Repository,
	users userdomain.Repository,
	rbac rbacdomain.Repository,
	mailer email.Provider,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:    log.Named("invitation.service"),
		cfg:    cfg,
		db:     db,
		clk:    clk,
		repo:   repo,
		orgs:   orgs,
		users:  users,
		rbac:   rbac,
		mailer: mailer,
		genID:  genID,
	}
}

func (s *service) AcceptInvitation(ctx context.Context, req domain.AcceptInvitationRequest) (*domain.AcceptInvitationResponse, error) {
	invitation, err := s.repo.FindByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("invitation not found")
		}
		return nil, err
	}

	if !strings.EqualFold(invitation.Email, req.Email) {
		return nil, apperror.BadRequest("email does not match invitation")
	}
	if invitation.StatusID != domain.StatusPending {
		return nil, apperror.BadRequest("invitation is no longer pending")
	}
	if invitation.Expired(s.clk.Now()) {
		return nil, apperror.BadRequest("invitation has expired")
	}

	orgID, orgName, roleName, err := s.resolveOrganization(ctx, invitation)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.BadRequest("a user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := password.Hash(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperror.BadRequest("invalid password")
	}

	now := s.clk.Now()
	user := &userdomain.User{
		ID:            s.genID.Generate(),
		Email:         req.Email,
		PasswordHash:  hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		EmailVerified: true,
		StatusID:      userdomain.StatusActive,
		CooperativeID: invitation.CooperativeID,
		DistrictID:    invitation.DistrictID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		rbac := s.rbac.WithTx(tx)
		invitations := s.repo.WithTx(tx)

		if err := users.Create(ctx, user); err != nil {
			return err
		}

		role, err := rbac.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("role not found")
			}
			return err
		}

		scope := &rbacdomain.Scope{
			ID:        s.genID.Generate(),
			Name:      orgName,
			Slug:      slug.Make(orgName),
			Type:      rbacdomain.ScopeOrganization,
			CreatedAt: now,
		}
		if err := rbac.CreateScope(ctx, scope); err != nil {
			return err
		}

		grant := &rbacdomain.UserRole{
			ID:        s.genID.Generate(),
			UserID:    user.ID,
			RoleID:    role.ID,
			ScopeID:   scope.ID,
			CreatedAt: now,
		}
		if err := rbac.CreateUserRole(ctx, grant); err != nil {
			return err
		}

		invitation.MarkAccepted(now)
		return invitations.Update(ctx, *invitation)
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendTemplate(ctx, []string{user.Email}, email.TemplateInviteAccepted, email.InviteAcceptedData{
		CompanyName: s.cfg.CompanyName,
		FirstName:   user.FirstName,
		LoginLink:   s.cfg.FrontendBaseURL + "/login",
	}); err != nil {
		return nil, err
	}

	s.log.Info("invitation accepted",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("user_id", user.ID.String()),
	)

	return &domain.AcceptInvitationResponse{
		Message:        "invitation accepted",
		UserID:         user.ID.String(),
		OrganizationID: orgID.String(),
	}, nil
}

// resolveOrganization maps the invitation's organization reference to the
// role granted on acceptance.
func (s *service) resolveOrganization(ctx context.Context, invitation *domain.Invitation) (snowflake.ID, string, string, error) {
	switch {
	case invitation.CooperativeID != nil:
		coop, err := s.orgs.FindCooperativeByID(ctx, *invitation.CooperativeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, "", "", apperror.NotFound("organization not found")
			}
			return 0, "", "", err
		}
		return coop.ID, coop.Name, rbacdomain.RoleGroupAdmin, nil
	case invitation.DistrictID != nil:
		district, err := s.orgs.FindDistrictByID(ctx, *invitation.DistrictID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, "", "", apperror.NotFound("organization not found")
			}
			return 0, "", "", err
		}
		return district.ID, district.Name, rbacdomain.RoleDistrictAdmin, nil
	default:
		return 0, "", "", apperror.NotFound("invitation has no organization")
	}
}
