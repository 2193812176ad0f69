package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	"github.com/procurehq/procure/internal/organization/domain"
	"github.com/procurehq/procure/internal/providers/email"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log         *zap.Logger
	cfg         config.Config
	db          *gorm.DB
	clk         clock.Clock
	repo        domain.Repository
	invitations invitationdomain.Repository
	users       userdomain.Repository
	mailer      email.Provider
	genID       *snowflake.Node
}

func NewService(
	log *zap.Logger,
	cfg config.Config,
	db *gorm.DB,
	clk clock.Clock,
	repo domain.Repository,
	invitations invitationdomain.Repository,
	users userdomain.Repository,
	mailer email.Provider,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:         log.Named("organization.service"),
		cfg:         cfg,
		db:          db,
		clk:         clk,
		repo:        repo,
		invitations: invitations,
		users:       users,
		mailer:      mailer,
		genID:       genID,
	}
}

func (s *service) InviteOrganization(ctx context.Context, inviterID snowflake.ID, req domain.InviteOrganizationRequest) (*domain.InviteOrganizationResponse, error) {
	resp, err := s.inviteOrganization(ctx, inviterID, req)
	if err != nil {
		return nil, apperror.EnsureBadRequest(err)
	}
	return resp, nil
}

func (s *service) inviteOrganization(ctx context.Context, inviterID snowflake.ID, req domain.InviteOrganizationRequest) (*domain.InviteOrganizationResponse, error) {
	if err := s.requireSuperAdmin(ctx, inviterID); err != nil {
		return nil, err
	}

	if existing, err := s.invitations.FindPendingByEmail(ctx, req.Email); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if existing != nil {
		return nil, apperror.BadRequest("an invitation is already pending for this email")
	}

	token, err := invitationdomain.NewToken()
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	expiresAt := now.Add(time.Duration(s.cfg.InviteTTLDays) * 24 * time.Hour)
	invitation := &invitationdomain.Invitation{
		ID:             s.genID.Generate(),
		Email:          req.Email,
		InvitedBy:      inviterID,
		StatusID:       invitationdomain.StatusPending,
		Token:          token,
		ExpirationDate: &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var orgID snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invitations := s.invitations.WithTx(tx)

		switch req.OrganizationType {
		case domain.TypeCooperative:
			if _, err := repo.FindCooperativeByName(ctx, req.Name); err == nil {
				return apperror.BadRequest("a cooperative with this name already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			coop := &domain.Cooperative{
				ID:        s.genID.Generate(),
				Name:      req.Name,
				Code:      fmt.Sprintf("COOP-%d", now.UnixMilli()),
				StatusID:  domain.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateCooperative(ctx, coop); err != nil {
				return err
			}
			orgID = coop.ID
			invitation.CooperativeID = &coop.ID
		case domain.TypeDistrict:
			if _, err := repo.FindDistrictByName(ctx, req.Name); err == nil {
				return apperror.BadRequest("a district with this name already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			district := &domain.District{
				ID:        s.genID.Generate(),
				Name:      req.Name,
				StatusID:  domain.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateDistrict(ctx, district); err != nil {
				return err
			}
			orgID = district.ID
			invitation.DistrictID = &district.ID
		default:
			return apperror.BadRequest("organization type not found")
		}

		return invitations.Create(ctx, invitation)
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendTemplate(ctx, []string{req.Email}, email.TemplateOrganizationInvite, email.OrganizationInviteData{
		CompanyName:      s.cfg.CompanyName,
		OrganizationName: req.Name,
		AcceptLink:       s.cfg.FrontendBaseURL + "/invitations/accept?token=" + invitation.Token,
	}); err != nil {
		return nil, err
	}

	s.log.Info("organization invited",
		zap.String("organization_id", orgID.String()),
		zap.String("organization_type", req.OrganizationType),
	)

	return &domain.InviteOrganizationResponse{
		Message:        "invitation sent",
		OrganizationID: orgID.String(),
		InvitationID:   invitation.ID.String(),
	}, nil
}

func (s *service) UpdateOrganization(ctx context.Context, callerID snowflake.ID, req domain.UpdateOrganizationRequest) (*domain.UpdateOrganizationResponse, error) {
	resp, err := s.updateOrganization(ctx, callerID, req)
	if err != nil {
		return nil, apperror.EnsureBadRequest(err)
	}
	return resp, nil
}

func (s *service) updateOrganization(ctx context.Context, callerID snowflake.ID, req domain.UpdateOrganizationRequest) (*domain.UpdateOrganizationResponse, error) {
	if err := s.requireSuperAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, apperror.BadRequest("invalid organization id")
	}

	patch := domain.ContactPatch{
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Phone:   req.Phone,
		Email:   req.Email,
	}

	coop, err := s.repo.FindCooperativeByID(ctx, id)
	if err == nil {
		updated := coop.Update(patch)
		updated.UpdatedAt = s.clk.Now()
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpdateCooperative(ctx, updated)
		})
		if err != nil {
			return nil, err
		}
		return &domain.UpdateOrganizationResponse{
			Message:          "organization updated",
			OrganizationID:   updated.ID.String(),
			OrganizationType: domain.TypeCooperative,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	district, err := s.repo.FindDistrictByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("organization not found")
		}
		return nil, err
	}

	updated := district.Update(patch)
	updated.UpdatedAt = s.clk.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateDistrict(ctx, updated)
	})
	if err != nil {
		return nil, err
	}
	return &domain.UpdateOrganizationResponse{
		Message:          "organization updated",
		OrganizationID:   updated.ID.String(),
		OrganizationType: domain.TypeDistrict,
	}, nil
}

func (s *service) ListOrganizations(ctx context.Context, callerID snowflake.ID) (*domain.ListOrganizationsResponse, error) {
	if err := s.requireSuperAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	coops, err := s.repo.ListCooperatives(ctx)
	if err != nil {
		return nil, err
	}
	districts, err := s.repo.ListDistricts(ctx)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListOrganizationsResponse{
		Organizations: make([]domain.OrganizationListItem, 0, len(coops)+len(districts)),
	}
	for _, coop := range coops {
		resp.Organizations = append(resp.Organizations, domain.OrganizationListItem{
			ID:     coop.ID.String(),
			Name:   coop.Name,
			Type:   domain.TypeCooperative,
			Code:   coop.Code,
			Status: coop.StatusID,
		})
	}
	for _, district := range districts {
		resp.Organizations = append(resp.Organizations, domain.OrganizationListItem{
			ID:     district.ID.String(),
			Name:   district.Name,
			Type:   domain.TypeDistrict,
			Status: district.StatusID,
		})
	}
	return resp, nil
}

func (s *service) requireSuperAdmin(ctx context.Context, callerID snowflake.ID) error {
	caller, err := s.users.FindDetailByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}
	if !rbacdomain.HasAnyRole(caller.AdminRoles(), []string{rbacdomain.RoleSuperAdmin}) {
		return apperror.Forbidden("super admin role required")
	}
	return nil
}
