// Package seed bootstraps the fixed role catalog so role resolution never
// fails on a fresh database.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	rbacdomain "github.com/procurehq/procure/internal/rbac/domain"
	"gorm.io/gorm"
)

var roleCatalog = map[rbacdomain.Category][]string{
	rbacdomain.CategoryAdmin: {
		rbacdomain.RoleSuperAdmin,
		rbacdomain.RoleGroupAdmin,
		rbacdomain.RoleDistrictAdmin,
	},
	rbacdomain.CategoryBid: {
		rbacdomain.RoleBidManager,
		rbacdomain.RoleBidViewer,
	},
}

var rolePermissions = map[string][]string{
	rbacdomain.RoleSuperAdmin:    {"organizations.manage", "users.manage", "bids.manage"},
	rbacdomain.RoleGroupAdmin:    {"users.manage", "bids.manage"},
	rbacdomain.RoleDistrictAdmin: {"users.manage", "bids.manage"},
	rbacdomain.RoleBidManager:    {"bids.manage"},
	rbacdomain.RoleBidViewer:     {"bids.view"},
}

// EnsureRoles creates any missing role categories, roles, permissions and
// their links. Existing rows are left untouched.
func EnsureRoles(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		permissions, err := ensurePermissions(ctx, tx, node)
		if err != nil {
			return err
		}

		for category, roleNames := range roleCatalog {
			cat, err := ensureCategory(ctx, tx, node, category)
			if err != nil {
				return err
			}
			for _, roleName := range roleNames {
				role, err := ensureRole(ctx, tx, node, roleName, cat.ID)
				if err != nil {
					return err
				}
				for _, permName := range rolePermissions[roleName] {
					if err := ensureRolePermission(ctx, tx, node, role.ID, permissions[permName]); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func ensureCategory(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name rbacdomain.Category) (*rbacdomain.RoleCategory, error) {
	var category rbacdomain.RoleCategory
	err := tx.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = rbacdomain.RoleCategory{ID: node.Generate(), Name: name}
	if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func ensureRole(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string, categoryID snowflake.ID) (*rbacdomain.Role, error) {
	var role rbacdomain.Role
	err := tx.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = rbacdomain.Role{ID: node.Generate(), Name: name, CategoryID: categoryID}
	if err := tx.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func ensurePermissions(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (map[string]snowflake.ID, error) {
	names := map[string]struct{}{}
	for _, perms := range rolePermissions {
		for _, name := range perms {
			names[name] = struct{}{}
		}
	}

	out := make(map[string]snowflake.ID, len(names))
	for name := range names {
		var perm rbacdomain.Permission
		err := tx.WithContext(ctx).Where("name = ?", name).First(&perm).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			perm = rbacdomain.Permission{ID: node.Generate(), Name: name}
			err = tx.WithContext(ctx).Create(&perm).Error
		}
		if err != nil {
			return nil, err
		}
		out[name] = perm.ID
	}
	return out, nil
}

func ensureRolePermission(ctx context.Context, tx *gorm.DB, node *snowflake.Node, roleID, permissionID snowflake.ID) error {
	var link rbacdomain.RolePermission
	err := tx.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		First(&link).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	link = rbacdomain.RolePermission{ID: node.Generate(), RoleID: roleID, PermissionID: permissionID}
	return tx.WithContext(ctx).Create(&link).Error
}
