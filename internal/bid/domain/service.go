package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	ListBids(ctx context.Context, callerID snowflake.ID, req ListBidsRequest) (*ListBidsResponse, error)
}

type ListBidsRequest struct {
	DistrictID string
}

type BidListItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Number     string `json:"number"`
	DistrictID string `json:"district_id"`
	StatusID   Status `json:"status_id"`
}

type ListBidsResponse struct {
	Bids []BidListItem `json:"bids"`
}
