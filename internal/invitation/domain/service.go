package domain

import "context"

type Service interface {
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*AcceptInvitationResponse, error)
}

type AcceptInvitationRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Token     string
}

type AcceptInvitationResponse struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
}
