package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	InviteOrganization(ctx context.Context, inviterID snowflake.ID, req InviteOrganizationRequest) (*InviteOrganizationResponse, error)
	UpdateOrganization(ctx context.Context, callerID snowflake.ID, req UpdateOrganizationRequest) (*UpdateOrganizationResponse, error)
	ListOrganizations(ctx context.Context, callerID snowflake.ID) (*ListOrganizationsResponse, error)
}

type InviteOrganizationRequest struct {
	Email            string
	OrganizationType string
	Name             string
}

type InviteOrganizationResponse struct {
	Message        string `json:"message"`
	OrganizationID string `json:"organization_id"`
	InvitationID   string `json:"invitation_id"`
}

type UpdateOrganizationRequest struct {
	ID      string
	Address *string
	City    *string
	State   *string
	Zip     *string
	Phone   *string
	Email   *string
}

type UpdateOrganizationResponse struct {
	Message          string `json:"message"`
	OrganizationID   string `json:"organization_id"`
	OrganizationType string `json:"organization_type"`
}

type OrganizationListItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Code   string `json:"code,omitempty"`
	Status Status `json:"status"`
}

type ListOrganizationsResponse struct {
	Organizations []OrganizationListItem `json:"organizations"`
}
