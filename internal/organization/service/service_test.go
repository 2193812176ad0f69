package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	invitationrepo "github.com/procurehq/procure/internal/invitation/repository"
	"github.com/procurehq/procure/internal/organization/domain"
	orgrepo "github.com/procurehq/procure/internal/organization/repository"
	"github.com/procurehq/procure/internal/providers/email"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	userdomain "github.com/procurehq/procure/internal/user/domain"
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
	orgs        domain.Repository
	invitations invitationdomain.Repository
	users       userdomain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&userdomain.User{},
		&invitationdomain.Invitation{},
		&domain.Cooperative{},
		&domain.District{},
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
		orgs:        orgrepo.NewRepository(gdb),
		invitations: invitationrepo.NewRepository(gdb),
		users:       userrepo.NewRepository(gdb),
	}

	cfg := config.Config{
		InviteTTLDays:   7,
		CompanyName:     "Procure",
		FrontendBaseURL: "http://localhost:3000",
	}
	f.svc = NewService(zap.NewNop(), cfg, gdb, clk, f.orgs, f.invitations, f.users, &email.NoOpProvider{}, node)
	return f
}

// seedAdmin creates a user holding roleName in the admin category and
// returns its id.
func (f *fixture) seedAdmin(t *testing.T, roleName string) snowflake.ID {
	t.Helper()

	category := rbacdomain.RoleCategory{ID: f.node.Generate(), Name: rbacdomain.CategoryAdmin}
	if err := f.db.FirstOrCreate(&category, rbacdomain.RoleCategory{Name: rbacdomain.CategoryAdmin}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	role := rbacdomain.Role{ID: f.node.Generate(), Name: roleName, CategoryID: category.ID}
	if err := f.db.Create(&role).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}

	user := userdomain.User{
		ID:           f.node.Generate(),
		Email:        strings.ToLower(roleName) + "@example.com",
		PasswordHash: "x",
		StatusID:     userdomain.StatusActive,
	}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	scope := rbacdomain.Scope{ID: f.node.Generate(), Name: "Global", Type: rbacdomain.ScopeGlobal}
	if err := f.db.Create(&scope).Error; err != nil {
		t.Fatalf("seed scope: %v", err)
	}
	grant := rbacdomain.UserRole{ID: f.node.Generate(), UserID: user.ID, RoleID: role.ID, ScopeID: scope.ID}
	if err := f.db.Create(&grant).Error; err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	return user.ID
}

func TestInviteOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("cooperative gets COOP code and pending invitation", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		resp, err := f.svc.InviteOrganization(ctx, admin, domain.InviteOrganizationRequest{
			Email:            "lead@coop.example.com",
			OrganizationType: domain.TypeCooperative,
			Name:             "Northern Purchasing Group",
		})
		if err != nil {
			t.Fatalf("invite: %v", err)
		}

		coopID, err := snowflake.ParseString(resp.OrganizationID)
		if err != nil {
			t.Fatalf("parse org id: %v", err)
		}
		coop, err := f.orgs.FindCooperativeByID(ctx, coopID)
		if err != nil {
			t.Fatalf("load cooperative: %v", err)
		}
		assert.Equal(t, "COOP-1748779200000", coop.Code)
		assert.Equal(t, domain.StatusActive, coop.StatusID)

		invitation, err := f.invitations.FindPendingByEmail(ctx, "lead@coop.example.com")
		if err != nil {
			t.Fatalf("load invitation: %v", err)
		}
		assert.Len(t, invitation.Token, 64)
		if assert.NotNil(t, invitation.ExpirationDate) {
			assert.Equal(t, f.clk.Now().Add(7*24*time.Hour), invitation.ExpirationDate.UTC())
		}
		if assert.NotNil(t, invitation.CooperativeID) {
			assert.Equal(t, coopID, *invitation.CooperativeID)
		}
	})

	t.Run("district invite", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		resp, err := f.svc.InviteOrganization(ctx, admin, domain.InviteOrganizationRequest{
			Email:            "lead@district.example.com",
			OrganizationType: domain.TypeDistrict,
			Name:             "Lakeside School District",
		})
		if err != nil {
			t.Fatalf("invite: %v", err)
		}

		districtID, _ := snowflake.ParseString(resp.OrganizationID)
		district, err := f.orgs.FindDistrictByID(ctx, districtID)
		if err != nil {
			t.Fatalf("load district: %v", err)
		}
		assert.Nil(t, district.Address)
		assert.Nil(t, district.CooperativeID)
	})

	t.Run("requires super admin", func(t *testing.T) {
		f := newFixture(t)
		groupAdmin := f.seedAdmin(t, rbacdomain.RoleGroupAdmin)

		_, err := f.svc.InviteOrganization(ctx, groupAdmin, domain.InviteOrganizationRequest{
			Email:            "lead@coop.example.com",
			OrganizationType: domain.TypeCooperative,
			Name:             "Northern Purchasing Group",
		})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindForbidden, kind)
	})

	t.Run("unknown inviter", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.InviteOrganization(ctx, f.node.Generate(), domain.InviteOrganizationRequest{
			Email:            "lead@coop.example.com",
			OrganizationType: domain.TypeCooperative,
			Name:             "Northern Purchasing Group",
		})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindNotFound, kind)
	})

	t.Run("duplicate pending invitation", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		req := domain.InviteOrganizationRequest{
			Email:            "lead@coop.example.com",
			OrganizationType: domain.TypeCooperative,
			Name:             "Northern Purchasing Group",
		}
		if _, err := f.svc.InviteOrganization(ctx, admin, req); err != nil {
			t.Fatalf("first invite: %v", err)
		}

		req.Name = "Another Group"
		_, err := f.svc.InviteOrganization(ctx, admin, req)
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})

	t.Run("duplicate cooperative name", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		if _, err := f.svc.InviteOrganization(ctx, admin, domain.InviteOrganizationRequest{
			Email:            "lead@coop.example.com",
			OrganizationType: domain.TypeCooperative,
			Name:             "Northern Purchasing Group",
		}); err != nil {
			t.Fatalf("first invite: %v", err)
		}

		f.clk.Advance(time.Second)
		_, err := f.svc.InviteOrganization(ctx, admin, domain.InviteOrganizationRequest{
			Email:            "other@coop.example.com",
			OrganizationType: domain.TypeCooperative,
			Name:             "Northern Purchasing Group",
		})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})

	t.Run("unknown organization type", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		_, err := f.svc.InviteOrganization(ctx, admin, domain.InviteOrganizationRequest{
			Email:            "lead@coop.example.com",
			OrganizationType: "school",
			Name:             "Northern Purchasing Group",
		})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})
}

func TestUpdateOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update of cooperative contact fields", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		city := "Portland"
		coop := &domain.Cooperative{
			ID:       f.node.Generate(),
			Name:     "Northern Purchasing Group",
			Code:     "COOP-1",
			City:     &city,
			StatusID: domain.StatusActive,
		}
		if err := f.orgs.CreateCooperative(ctx, coop); err != nil {
			t.Fatalf("seed cooperative: %v", err)
		}

		phone := "503-555-0101"
		resp, err := f.svc.UpdateOrganization(ctx, admin, domain.UpdateOrganizationRequest{
			ID:    coop.ID.String(),
			Phone: &phone,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		assert.Equal(t, domain.TypeCooperative, resp.OrganizationType)

		got, err := f.orgs.FindCooperativeByID(ctx, coop.ID)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if assert.NotNil(t, got.Phone) {
			assert.Equal(t, phone, *got.Phone)
		}
		// untouched fields survive
		if assert.NotNil(t, got.City) {
			assert.Equal(t, city, *got.City)
		}
	})

	t.Run("falls back to district lookup", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		district := &domain.District{
			ID:       f.node.Generate(),
			Name:     "Lakeside School District",
			StatusID: domain.StatusActive,
		}
		if err := f.orgs.CreateDistrict(ctx, district); err != nil {
			t.Fatalf("seed district: %v", err)
		}

		zip := "97201"
		resp, err := f.svc.UpdateOrganization(ctx, admin, domain.UpdateOrganizationRequest{
			ID:  district.ID.String(),
			Zip: &zip,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		assert.Equal(t, domain.TypeDistrict, resp.OrganizationType)
	})

	t.Run("unknown organization", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		_, err := f.svc.UpdateOrganization(ctx, admin, domain.UpdateOrganizationRequest{
			ID: f.node.Generate().String(),
		})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindNotFound, kind)
	})

	t.Run("malformed id is laundered to bad request", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		_, err := f.svc.UpdateOrganization(ctx, admin, domain.UpdateOrganizationRequest{ID: "not-an-id"})
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})
}

func TestListOrganizations(t *testing.T) {
	ctx := context.Background()

	t.Run("returns both flavors", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedAdmin(t, rbacdomain.RoleSuperAdmin)

		coop := &domain.Cooperative{ID: f.node.Generate(), Name: "Coop", Code: "COOP-1", StatusID: domain.StatusActive}
		district := &domain.District{ID: f.node.Generate(), Name: "District", StatusID: domain.StatusActive}
		if err := f.orgs.CreateCooperative(ctx, coop); err != nil {
			t.Fatalf("seed cooperative: %v", err)
		}
		if err := f.orgs.CreateDistrict(ctx, district); err != nil {
			t.Fatalf("seed district: %v", err)
		}

		resp, err := f.svc.ListOrganizations(ctx, admin)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		assert.Len(t, resp.Organizations, 2)
	})

	t.Run("requires super admin", func(t *testing.T) {
		f := newFixture(t)
		districtAdmin := f.seedAdmin(t, rbacdomain.RoleDistrictAdmin)

		_, err := f.svc.ListOrganizations(ctx, districtAdmin)
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindForbidden, kind)
	})
}
