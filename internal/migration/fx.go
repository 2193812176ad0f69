package migration

import (
	authdomain "github.com/procurehq/procure/internal/auth/domain"
	biddomain "github.com/procurehq/procure/internal/bid/domain"
	"github.com/procurehq/procure/internal/config"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	orgdomain "github.com/procurehq/procure/internal/organization/domain"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	"github.com/procurehq/procure/internal/seed"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite development setups migrate via gorm
			if err := conn.AutoMigrate(
				&orgdomain.Cooperative{},
				&orgdomain.District{},
				&userdomain.User{},
				&userdomain.UserManagedBid{},
				&userdomain.BulkUpload{},
				&invitationdomain.Invitation{},
				&rbacdomain.RoleCategory{},
				&rbacdomain.Role{},
				&rbacdomain.Permission{},
				&rbacdomain.RolePermission{},
				&rbacdomain.Scope{},
				&rbacdomain.UserRole{},
				&authdomain.Session{},
				&authdomain.EmailVerificationCode{},
				&authdomain.PasswordResetCode{},
				&biddomain.Bid{},
				&biddomain.BidItem{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureRoles(conn)
	}),
)
