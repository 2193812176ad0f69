package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	"github.com/procurehq/procure/internal/providers/email"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	"github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"github.com/procurehq/procure/pkg/db/pagination"
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
	mailer email.Provider,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:         log.Named("user.service"),
		cfg:         cfg,
		db:          db,
		clk:         clk,
		repo:        repo,
		invitations: invitations,
		mailer:      mailer,
		genID:       genID,
	}
}

func (s *service) InviteUser(ctx context.Context, inviterID snowflake.ID, req domain.InviteUserRequest) (*domain.InviteUserResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.BadRequest("a user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing, err := s.invitations.FindPendingByEmail(ctx, req.Email); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if existing != nil {
		return nil, apperror.BadRequest("an invitation is already pending for this email")
	}

	inviter, err := s.repo.FindByID(ctx, inviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("inviter not found")
		}
		return nil, err
	}

	token, err := invitationdomain.NewToken()
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	expiresAt := now.Add(time.Duration(s.cfg.InviteTTLDays) * 24 * time.Hour)
	districtID := req.DistrictID
	if districtID == nil {
		districtID = inviter.DistrictID
	}

	invitation := &invitationdomain.Invitation{
		ID:             s.genID.Generate(),
		Email:          req.Email,
		DistrictID:     districtID,
		InvitedBy:      inviter.ID,
		StatusID:       invitationdomain.StatusPending,
		Token:          token,
		ExpirationDate: &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}

	if err := s.mailer.SendTemplate(ctx, []string{req.Email}, email.TemplateUserInvite, email.UserInviteData{
		CompanyName:      s.cfg.CompanyName,
		OrganizationName: s.cfg.CompanyName,
		AcceptLink:       s.cfg.FrontendBaseURL + "/invitations/accept?token=" + token,
	}); err != nil {
		return nil, err
	}

	return &domain.InviteUserResponse{
		Message:      "invitation sent",
		InvitationID: invitation.ID.String(),
	}, nil
}

func (s *service) ListUsers(ctx context.Context, callerID snowflake.ID, req domain.ListUsersRequest) (*domain.ListUsersResponse, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	filter := domain.ListFilter{Limit: pageLimit(req.PageSize)}

	if raw := strings.TrimSpace(req.DistrictID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, apperror.BadRequest("invalid district id")
		}
		filter.DistrictID = &id
	}
	if raw := strings.TrimSpace(req.CooperativeID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, apperror.BadRequest("invalid cooperative id")
		}
		filter.CooperativeID = &id
	}
	if err := applyCursor(&filter, req.PageToken); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildUserPage(users, filter.Limit), nil
}

func (s *service) SearchUsers(ctx context.Context, callerID snowflake.ID, req domain.SearchUsersRequest) (*domain.ListUsersResponse, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	filter := domain.ListFilter{
		Query: strings.TrimSpace(req.Query),
		Limit: pageLimit(req.PageSize),
	}
	if err := applyCursor(&filter, req.PageToken); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildUserPage(users, filter.Limit), nil
}

func (s *service) GetEligibleBidManagers(ctx context.Context, callerID snowflake.ID, req domain.EligibleBidManagersRequest) (*domain.EligibleBidManagersResponse, error) {
	caller, err := s.requireAdminDetail(ctx, callerID)
	if err != nil {
		return nil, err
	}

	districtID := caller.DistrictID
	if raw := strings.TrimSpace(req.DistrictID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, apperror.BadRequest("invalid district id")
		}
		districtID = &id
	}
	if districtID == nil {
		return nil, apperror.BadRequest("district id required")
	}

	managers, err := s.repo.ListBidManagersByDistrict(ctx, *districtID)
	if err != nil {
		return nil, err
	}

	resp := &domain.EligibleBidManagersResponse{Managers: make([]domain.UserListItem, 0, len(managers))}
	for _, manager := range managers {
		resp.Managers = append(resp.Managers, toListItem(manager))
	}
	return resp, nil
}

func (s *service) requireAdmin(ctx context.Context, callerID snowflake.ID) error {
	_, err := s.requireAdminDetail(ctx, callerID)
	return err
}

func (s *service) requireAdminDetail(ctx context.Context, callerID snowflake.ID) (*domain.Detail, error) {
	caller, err := s.repo.FindDetailByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Forbidden("requester not found")
		}
		return nil, err
	}
	if !rbacdomain.HasAnyRole(caller.AdminRoles(), rbacdomain.AdminGateRoles) {
		return nil, apperror.Forbidden("admin role required")
	}
	return caller, nil
}

func pageLimit(size int) int {
	if size <= 0 {
		return 25
	}
	if size > 250 {
		return 250
	}
	return size
}

func applyCursor(filter *domain.ListFilter, pageToken string) error {
	if pageToken == "" {
		return nil
	}
	cursor, err := pagination.DecodeCursor(pageToken)
	if err != nil {
		return apperror.BadRequest("invalid page token")
	}
	id, err := snowflake.ParseString(cursor.ID)
	if err != nil {
		return apperror.BadRequest("invalid page token")
	}
	filter.AfterID = &id
	return nil
}

func buildUserPage(users []*domain.User, limit int) *domain.ListUsersResponse {
	page, info := pagination.BuildCursorPageInfo(users, limit, func(u *domain.User) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: u.ID.String()})
		return token
	})

	resp := &domain.ListUsersResponse{
		PageInfo: *info,
		Users:    make([]domain.UserListItem, 0, len(page)),
	}
	for _, user := range page {
		resp.Users = append(resp.Users, toListItem(user))
	}
	return resp
}

func toListItem(user *domain.User) domain.UserListItem {
	return domain.UserListItem{
		ID:            user.ID.String(),
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		StatusID:      user.StatusID,
		EmailVerified: user.EmailVerified,
	}
}
