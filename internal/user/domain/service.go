package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/pkg/db/pagination"
)

type Service interface {
	InviteUser(ctx context.Context, inviterID snowflake.ID, req InviteUserRequest) (*InviteUserResponse, error)
	BulkUploadUsers(ctx context.Context, inviterID snowflake.ID, req BulkUploadRequest) (*BulkUploadResponse, error)
	ListUsers(ctx context.Context, callerID snowflake.ID, req ListUsersRequest) (*ListUsersResponse, error)
	SearchUsers(ctx context.Context, callerID snowflake.ID, req SearchUsersRequest) (*ListUsersResponse, error)
	GenerateBulkUserTemplate(ctx context.Context, callerID snowflake.ID) (*BulkUserTemplate, error)
	GetEligibleBidManagers(ctx context.Context, callerID snowflake.ID, req EligibleBidManagersRequest) (*EligibleBidManagersResponse, error)
}

type InviteUserRequest struct {
	Email      string
	DistrictID *snowflake.ID
}

type InviteUserResponse struct {
	Message      string `json:"message"`
	InvitationID string `json:"invitation_id"`
}

type BulkUploadRequest struct {
	FileName    string
	ContentType string
	Data        []byte
}

type BulkUploadResponse struct {
	Message       string `json:"message"`
	BulkUploadID  string `json:"bulk_upload_id"`
	TotalRows     int    `json:"total_rows"`
	ProcessedRows int    `json:"processed_rows"`
	FailedRows    int    `json:"failed_rows"`
}

type ListUsersRequest struct {
	pagination.Pagination
	DistrictID    string
	CooperativeID string
}

type SearchUsersRequest struct {
	pagination.Pagination
	Query string
}

type UserListItem struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	StatusID      Status `json:"status_id"`
	EmailVerified bool   `json:"email_verified"`
}

type ListUsersResponse struct {
	pagination.PageInfo
	Users []UserListItem `json:"users"`
}

// BulkUserTemplate is the downloadable CSV skeleton for bulk invitations.
type BulkUserTemplate struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

type EligibleBidManagersRequest struct {
	DistrictID string
}

type EligibleBidManagersResponse struct {
	Managers []UserListItem `json:"managers"`
}
