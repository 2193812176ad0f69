package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/bid/domain"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log      *zap.Logger
	repo     domain.Repository
	userRepo userdomain.Repository
}

func NewService(log *zap.Logger, repo domain.Repository, userRepo userdomain.Repository) domain.Service {
	return &service{
		log:      log.Named("bid.service"),
		repo:     repo,
		userRepo: userRepo,
	}
}

func (s *service) ListBids(ctx context.Context, callerID snowflake.ID, req domain.ListBidsRequest) (*domain.ListBidsResponse, error) {
	caller, err := s.userRepo.FindDetailByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Forbidden("requester not found")
		}
		return nil, err
	}

	admin := rbacdomain.HasAnyRole(caller.AdminRoles(), rbacdomain.AdminGateRoles)
	if !admin && len(caller.BidRoles()) == 0 {
		return nil, apperror.Forbidden("insufficient role")
	}

	districtID := caller.DistrictID
	if raw := strings.TrimSpace(req.DistrictID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, apperror.BadRequest("invalid district id")
		}
		districtID = &parsed
	}
	if districtID == nil {
		return nil, apperror.BadRequest("district id required")
	}

	bids, err := s.repo.ListByDistrict(ctx, *districtID)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListBidsResponse{Bids: make([]domain.BidListItem, 0, len(bids))}
	for _, bid := range bids {
		resp.Bids = append(resp.Bids, domain.BidListItem{
			ID:         bid.ID.String(),
			Name:       bid.Name,
			Number:     bid.Number,
			DistrictID: bid.DistrictID.String(),
			StatusID:   bid.StatusID,
		})
	}
	return resp, nil
}
