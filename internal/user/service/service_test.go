package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	invitationrepo "github.com/procurehq/procure/internal/invitation/repository"
	"github.com/procurehq/procure/internal/providers/email"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	"github.com/procurehq/procure/internal/user/domain"
	userrepo "github.com/procurehq/procure/internal/user/repository"
	"github.com/procurehq/procure/pkg/apperror"
	"github.com/procurehq/procure/pkg/db"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc         domain.Service
	clk         *clock.FakeClock
	db          *gorm.DB
	node        *snowflake.Node
	users       domain.Repository
	invitations invitationdomain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.BulkUpload{},
		&invitationdomain.Invitation{},
		&rbacdomain.RoleCategory{},
		&rbacdomain.Role{},
		&rbacdomain.Scope{},
		&rbacdomain.UserRole{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	f := &fixture{
		clk:         clk,
		db:          gdb,
		node:        node,
		users:       userrepo.NewRepository(gdb),
		invitations: invitationrepo.NewRepository(gdb),
	}

	cfg := config.Config{
		InviteTTLDays:     7,
		BulkUploadMaxRows: 5000,
		CompanyName:       "Procure",
		FrontendBaseURL:   "http://localhost:3000",
	}
	f.svc = NewService(zap.NewNop(), cfg, gdb, clk, f.users, f.invitations, &email.NoOpProvider{}, node)
	return f
}

// seedUserWithRole creates an active user and grants it roleName under
// category.
func (f *fixture) seedUserWithRole(t *testing.T, emailAddr, roleName string, category rbacdomain.Category) *domain.User {
	t.Helper()

	user := f.seedUser(t, emailAddr)

	var cat rbacdomain.RoleCategory
	err := f.db.Where("name = ?", category).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		cat = rbacdomain.RoleCategory{ID: f.node.Generate(), Name: category}
		err = f.db.Create(&cat).Error
	}
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	var role rbacdomain.Role
	err = f.db.Where("name = ?", roleName).First(&role).Error
	if err == gorm.ErrRecordNotFound {
		role = rbacdomain.Role{ID: f.node.Generate(), Name: roleName, CategoryID: cat.ID}
		err = f.db.Create(&role).Error
	}
	if err != nil {
		t.Fatalf("seed role: %v", err)
	}

	scope := rbacdomain.Scope{ID: f.node.Generate(), Name: "Global", Type: rbacdomain.ScopeGlobal}
	if err := f.db.Create(&scope).Error; err != nil {
		t.Fatalf("seed scope: %v", err)
	}
	grant := rbacdomain.UserRole{ID: f.node.Generate(), UserID: user.ID, RoleID: role.ID, ScopeID: scope.ID}
	if err := f.db.Create(&grant).Error; err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	return user
}

func (f *fixture) seedUser(t *testing.T, emailAddr string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           f.node.Generate(),
		Email:        emailAddr,
		PasswordHash: "x",
		StatusID:     domain.StatusActive,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", emailAddr, err)
	}
	return user
}

func TestInviteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending invitation with expiry", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		resp, err := f.svc.InviteUser(ctx, inviter.ID, domain.InviteUserRequest{Email: "new@example.com"})
		if err != nil {
			t.Fatalf("invite: %v", err)
		}

		invitation, err := f.invitations.FindPendingByEmail(ctx, "new@example.com")
		if err != nil {
			t.Fatalf("load invitation: %v", err)
		}
		assert.Equal(t, resp.InvitationID, invitation.ID.String())
		assert.Len(t, invitation.Token, 64)
		if assert.NotNil(t, invitation.ExpirationDate) {
			assert.Equal(t, f.clk.Now().Add(7*24*time.Hour), invitation.ExpirationDate.UTC())
		}
	})

	t.Run("inherits inviter district", func(t *testing.T) {
		f := newFixture(t)
		districtID := f.node.Generate()
		inviter := &domain.User{
			ID:           f.node.Generate(),
			Email:        "admin@example.com",
			PasswordHash: "x",
			StatusID:     domain.StatusActive,
			DistrictID:   &districtID,
		}
		if err := f.users.Create(ctx, inviter); err != nil {
			t.Fatalf("seed inviter: %v", err)
		}

		if _, err := f.svc.InviteUser(ctx, inviter.ID, domain.InviteUserRequest{Email: "new@example.com"}); err != nil {
			t.Fatalf("invite: %v", err)
		}

		invitation, err := f.invitations.FindPendingByEmail(ctx, "new@example.com")
		if err != nil {
			t.Fatalf("load invitation: %v", err)
		}
		if assert.NotNil(t, invitation.DistrictID) {
			assert.Equal(t, districtID, *invitation.DistrictID)
		}
	})

	t.Run("rejects existing user email", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")
		f.seedUser(t, "taken@example.com")

		_, err := f.svc.InviteUser(ctx, inviter.ID, domain.InviteUserRequest{Email: "taken@example.com"})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})

	t.Run("rejects duplicate pending invitation", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		if _, err := f.svc.InviteUser(ctx, inviter.ID, domain.InviteUserRequest{Email: "new@example.com"}); err != nil {
			t.Fatalf("first invite: %v", err)
		}
		_, err := f.svc.InviteUser(ctx, inviter.ID, domain.InviteUserRequest{Email: "new@example.com"})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})

	t.Run("unknown inviter", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.InviteUser(ctx, f.node.Generate(), domain.InviteUserRequest{Email: "new@example.com"})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindNotFound, kind)
	})
}

func TestAdminGate(t *testing.T) {
	ctx := context.Background()

	t.Run("bid roles are not admin roles", func(t *testing.T) {
		f := newFixture(t)
		manager := f.seedUserWithRole(t, "manager@example.com", rbacdomain.RoleBidManager, rbacdomain.CategoryBid)

		_, err := f.svc.ListUsers(ctx, manager.ID, domain.ListUsersRequest{})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindForbidden, kind)
	})

	t.Run("unknown requester", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListUsers(ctx, f.node.Generate(), domain.ListUsersRequest{})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindForbidden, kind)
	})

	t.Run("each admin role passes", func(t *testing.T) {
		f := newFixture(t)
		for i, roleName := range rbacdomain.AdminGateRoles {
			admin := f.seedUserWithRole(t, fmt.Sprintf("admin%d@example.com", i), roleName, rbacdomain.CategoryAdmin)
			if _, err := f.svc.ListUsers(ctx, admin.ID, domain.ListUsersRequest{}); err != nil {
				t.Fatalf("list as %s: %v", roleName, err)
			}
		}
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("paginates with cursor", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUserWithRole(t, "admin@example.com", rbacdomain.RoleSuperAdmin, rbacdomain.CategoryAdmin)

		for i := 0; i < 5; i++ {
			f.seedUser(t, fmt.Sprintf("user%d@example.com", i))
		}

		first, err := f.svc.ListUsers(ctx, admin.ID, domain.ListUsersRequest{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		assert.Len(t, first.Users, 6) // admin + 5

		req := domain.ListUsersRequest{}
		req.PageSize = 3
		page1, err := f.svc.ListUsers(ctx, admin.ID, req)
		if err != nil {
			t.Fatalf("page 1: %v", err)
		}
		assert.Len(t, page1.Users, 3)
		assert.True(t, page1.HasMore)

		req.PageToken = page1.NextPageToken
		page2, err := f.svc.ListUsers(ctx, admin.ID, req)
		if err != nil {
			t.Fatalf("page 2: %v", err)
		}
		assert.Len(t, page2.Users, 3)
		for _, u := range page2.Users {
			for _, seen := range page1.Users {
				assert.NotEqual(t, seen.ID, u.ID)
			}
		}
	})

	t.Run("excludes soft deleted users", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUserWithRole(t, "admin@example.com", rbacdomain.RoleSuperAdmin, rbacdomain.CategoryAdmin)

		gone := f.seedUser(t, "gone@example.com")
		gone.IsDeleted = true
		if err := f.users.Update(ctx, *gone); err != nil {
			t.Fatalf("soft delete: %v", err)
		}

		resp, err := f.svc.ListUsers(ctx, admin.ID, domain.ListUsersRequest{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, u := range resp.Users {
			assert.NotEqual(t, "gone@example.com", u.Email)
		}
	})

	t.Run("search matches name and email", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUserWithRole(t, "admin@example.com", rbacdomain.RoleSuperAdmin, rbacdomain.CategoryAdmin)

		target := f.seedUser(t, "dana.reyes@example.com")
		target.FirstName = "Dana"
		target.LastName = "Reyes"
		if err := f.users.Update(ctx, *target); err != nil {
			t.Fatalf("update: %v", err)
		}
		f.seedUser(t, "other@example.com")

		resp, err := f.svc.SearchUsers(ctx, admin.ID, domain.SearchUsersRequest{Query: "reyes"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if assert.Len(t, resp.Users, 1) {
			assert.Equal(t, "dana.reyes@example.com", resp.Users[0].Email)
		}
	})
}

func TestGetEligibleBidManagers(t *testing.T) {
	ctx := context.Background()

	t.Run("returns bid managers in district", func(t *testing.T) {
		f := newFixture(t)
		districtID := f.node.Generate()

		admin := f.seedUserWithRole(t, "admin@example.com", rbacdomain.RoleDistrictAdmin, rbacdomain.CategoryAdmin)
		admin.DistrictID = &districtID
		if err := f.users.Update(ctx, *admin); err != nil {
			t.Fatalf("update admin: %v", err)
		}

		manager := f.seedUserWithRole(t, "manager@example.com", rbacdomain.RoleBidManager, rbacdomain.CategoryBid)
		manager.DistrictID = &districtID
		if err := f.users.Update(ctx, *manager); err != nil {
			t.Fatalf("update manager: %v", err)
		}

		// viewer in the same district, not eligible
		viewer := f.seedUserWithRole(t, "viewer@example.com", rbacdomain.RoleBidViewer, rbacdomain.CategoryBid)
		viewer.DistrictID = &districtID
		if err := f.users.Update(ctx, *viewer); err != nil {
			t.Fatalf("update viewer: %v", err)
		}

		resp, err := f.svc.GetEligibleBidManagers(ctx, admin.ID, domain.EligibleBidManagersRequest{})
		if err != nil {
			t.Fatalf("eligible managers: %v", err)
		}
		if assert.Len(t, resp.Managers, 1) {
			assert.Equal(t, "manager@example.com", resp.Managers[0].Email)
		}
	})

	t.Run("requires a district", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUserWithRole(t, "admin@example.com", rbacdomain.RoleSuperAdmin, rbacdomain.CategoryAdmin)

		_, err := f.svc.GetEligibleBidManagers(ctx, admin.ID, domain.EligibleBidManagersRequest{})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})
}

func TestGenerateBulkUserTemplate(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUserWithRole(t, "admin@example.com", rbacdomain.RoleSuperAdmin, rbacdomain.CategoryAdmin)

	tmpl, err := f.svc.GenerateBulkUserTemplate(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	assert.Equal(t, "text/csv", tmpl.ContentType)
	lines := strings.Split(strings.TrimSpace(string(tmpl.Data)), "\n")
	if assert.GreaterOrEqual(t, len(lines), 1) {
		assert.Equal(t, strings.Join(requiredColumns, ","), strings.TrimSpace(lines[0]))
	}
}
