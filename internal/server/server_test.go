package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/procurehq/procure/internal/auth/domain"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	organizationdomain "github.com/procurehq/procure/internal/organization/domain"
	"github.com/procurehq/procure/pkg/apperror"
)

type fakeInvitationService struct {
	calls   int
	lastReq invitationdomain.AcceptInvitationRequest
	err     error
}

func (f *fakeInvitationService) AcceptInvitation(ctx context.Context, req invitationdomain.AcceptInvitationRequest) (*invitationdomain.AcceptInvitationResponse, error) {
	f.calls++
	f.lastReq = req
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	return &invitationdomain.AcceptInvitationResponse{
		Message:        "invitation accepted",
		UserID:         snowflake.ID(200).String(),
		OrganizationID: snowflake.ID(100).String(),
	}, nil
}

type fakeAuthService struct {
	session *authdomain.Session
	err     error
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	_ = ctx
	_ = req
	return nil, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	_ = rawToken
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeAuthService) RequestEmailVerification(ctx context.Context, userID snowflake.ID) (*authdomain.EmailVerificationCode, error) {
	_ = ctx
	_ = userID
	return nil, nil
}

func (f *fakeAuthService) VerifyEmail(ctx context.Context, req authdomain.VerifyEmailRequest) error {
	_ = ctx
	_ = req
	return nil
}

func (f *fakeAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	_ = ctx
	_ = email
	return nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, req authdomain.ResetPasswordRequest) error {
	_ = ctx
	_ = req
	return nil
}

type fakeOrganizationService struct {
	inviteCalls int
	lastInviter snowflake.ID
	err         error
}

func (f *fakeOrganizationService) InviteOrganization(ctx context.Context, inviterID snowflake.ID, req organizationdomain.InviteOrganizationRequest) (*organizationdomain.InviteOrganizationResponse, error) {
	f.inviteCalls++
	f.lastInviter = inviterID
	_ = ctx
	_ = req
	if f.err != nil {
		return nil, f.err
	}
	return &organizationdomain.InviteOrganizationResponse{
		Message:        "invitation sent",
		OrganizationID: snowflake.ID(100).String(),
		InvitationID:   snowflake.ID(300).String(),
	}, nil
}

func (f *fakeOrganizationService) UpdateOrganization(ctx context.Context, callerID snowflake.ID, req organizationdomain.UpdateOrganizationRequest) (*organizationdomain.UpdateOrganizationResponse, error) {
	_ = ctx
	_ = callerID
	_ = req
	return nil, nil
}

func (f *fakeOrganizationService) ListOrganizations(ctx context.Context, callerID snowflake.ID) (*organizationdomain.ListOrganizationsResponse, error) {
	_ = ctx
	_ = callerID
	return &organizationdomain.ListOrganizationsResponse{}, nil
}

func newTestRouter(srv *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/v1/invitations/accept", srv.AcceptInvitation)
	router.POST("/v1/organizations/invite", srv.AuthRequired(), srv.InviteOrganization)
	return router
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestAcceptInvitationHandler(t *testing.T) {
	post := func(srv *Server, payload string) *httptest.ResponseRecorder {
		router := newTestRouter(srv)
		req := httptest.NewRequest(http.MethodPost, "/v1/invitations/accept", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	t.Run("created", func(t *testing.T) {
		invitationSvc := &fakeInvitationService{}
		srv := &Server{invitationSvc: invitationSvc}

		resp := post(srv, `{"email":"Dana@Example.com","password":"secret123","first_name":"Dana","last_name":"Reyes","token":"tok"}`)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
		}
		if invitationSvc.calls != 1 {
			t.Fatalf("expected one service call, got %d", invitationSvc.calls)
		}
		if invitationSvc.lastReq.Email != "Dana@Example.com" {
			t.Fatalf("unexpected email %q", invitationSvc.lastReq.Email)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		invitationSvc := &fakeInvitationService{}
		srv := &Server{invitationSvc: invitationSvc}

		resp := post(srv, `{"email":"dana@example.com","password":"secret123"}`)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", resp.Code)
		}
		if invitationSvc.calls != 0 {
			t.Fatal("expected service not to be called")
		}
		if got := decodeError(t, resp); got.Type != "invalid_request" {
			t.Fatalf("unexpected error type %q", got.Type)
		}
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		cases := []struct {
			err     error
			status  int
			errType string
			errMsg  string
		}{
			{apperror.NotFound("invitation not found"), http.StatusNotFound, "not_found", "invitation not found"},
			{apperror.BadRequest("invitation has expired"), http.StatusBadRequest, "invalid_request", "invitation has expired"},
			{context.DeadlineExceeded, http.StatusInternalServerError, "internal_error", "internal server error"},
		}
		for _, tc := range cases {
			srv := &Server{invitationSvc: &fakeInvitationService{err: tc.err}}
			resp := post(srv, `{"email":"dana@example.com","password":"secret123","token":"tok"}`)
			if resp.Code != tc.status {
				t.Fatalf("expected status %d for %v, got %d", tc.status, tc.err, resp.Code)
			}
			got := decodeError(t, resp)
			if got.Type != tc.errType || got.Message != tc.errMsg {
				t.Fatalf("unexpected error payload %+v", got)
			}
		}
	})
}

func TestInviteOrganizationHandlerAuth(t *testing.T) {
	post := func(srv *Server, cookie string) *httptest.ResponseRecorder {
		router := newTestRouter(srv)
		req := httptest.NewRequest(http.MethodPost, "/v1/organizations/invite", bytes.NewBufferString(`{"email":"buyer@example.com","organization_type":"cooperative","name":"Bay Area Co-op"}`))
		req.Header.Set("Content-Type", "application/json")
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	t.Run("missing cookie", func(t *testing.T) {
		orgSvc := &fakeOrganizationService{}
		srv := &Server{authSvc: &fakeAuthService{}, organizationSvc: orgSvc}

		resp := post(srv, "")
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", resp.Code)
		}
		if orgSvc.inviteCalls != 0 {
			t.Fatal("expected service not to be called")
		}
	})

	t.Run("stale session", func(t *testing.T) {
		srv := &Server{
			authSvc:         &fakeAuthService{err: apperror.Unauthorized("session expired")},
			organizationSvc: &fakeOrganizationService{},
		}

		resp := post(srv, "stale-token")
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", resp.Code)
		}
	})

	t.Run("authenticated caller reaches the service", func(t *testing.T) {
		orgSvc := &fakeOrganizationService{}
		srv := &Server{
			authSvc:         &fakeAuthService{session: &authdomain.Session{ID: snowflake.ID(1), UserID: snowflake.ID(42)}},
			organizationSvc: orgSvc,
		}

		resp := post(srv, "valid-token")
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
		}
		if orgSvc.inviteCalls != 1 {
			t.Fatalf("expected one service call, got %d", orgSvc.inviteCalls)
		}
		if orgSvc.lastInviter != snowflake.ID(42) {
			t.Fatalf("unexpected inviter %d", orgSvc.lastInviter)
		}
	})

	t.Run("forbidden caller", func(t *testing.T) {
		srv := &Server{
			authSvc:         &fakeAuthService{session: &authdomain.Session{ID: snowflake.ID(1), UserID: snowflake.ID(42)}},
			organizationSvc: &fakeOrganizationService{err: apperror.Forbidden("super admin role required")},
		}

		resp := post(srv, "valid-token")
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", resp.Code)
		}
		if got := decodeError(t, resp); got.Type != "forbidden" {
			t.Fatalf("unexpected error type %q", got.Type)
		}
	})
}
