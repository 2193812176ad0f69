// Package domain contains the role and grant models shared by every
// authorization check.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category partitions roles into organizational-administration roles and
// bid-specific roles. The partition is a closed set; every authorization
// gate branches on it.
type Category string

const (
	CategoryAdmin Category = "Admin"
	CategoryBid   Category = "Bid"
)

// Fixed role names. Authorization gates match these exactly, case-sensitive.
const (
	RoleSuperAdmin    = "Super-Admin"
	RoleGroupAdmin    = "Group Admin"
	RoleDistrictAdmin = "District Admin"
	RoleBidManager    = "Bid Manager"
	RoleBidViewer     = "Bid Viewer"
)

// AdminGateRoles is the set of admin-category role names accepted by the
// listing/search/template gates.
var AdminGateRoles = []string{RoleSuperAdmin, RoleGroupAdmin, RoleDistrictAdmin}

type RoleCategory struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      Category     `gorm:"type:text;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (RoleCategory) TableName() string { return "role_categories" }

// Role is a named permission bundle belonging to exactly one category.
type Role struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	CategoryID snowflake.ID `gorm:"not null;index" json:"category_id"`
	Category   RoleCategory `gorm:"foreignKey:CategoryID" json:"category"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Role) TableName() string { return "roles" }

type Permission struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Permission) TableName() string { return "permissions" }

type RolePermission struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	RoleID       snowflake.ID `gorm:"not null;index;uniqueIndex:ux_role_permission,priority:1" json:"role_id"`
	PermissionID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_role_permission,priority:2" json:"permission_id"`
}

// TableName sets the database table name.
func (RolePermission) TableName() string { return "role_permissions" }

type ScopeType string

const (
	ScopeGlobal       ScopeType = "GLOBAL"
	ScopeOrganization ScopeType = "ORGANIZATION"
)

// Scope is the organizational boundary a role grant applies to.
type Scope struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;index" json:"slug"`
	Type      ScopeType    `gorm:"type:text;not null" json:"type"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Scope) TableName() string { return "scopes" }

// UserRole is the sole authorization-grant record: user + role + scope.
type UserRole struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	RoleID    snowflake.ID `gorm:"not null;index" json:"role_id"`
	ScopeID   snowflake.ID `gorm:"not null;index" json:"scope_id"`
	Role      Role         `gorm:"foreignKey:RoleID" json:"role"`
	Scope     Scope        `gorm:"foreignKey:ScopeID" json:"scope"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (UserRole) TableName() string { return "user_roles" }

// RoleNames returns the names of grants whose role belongs to category.
func RoleNames(grants []UserRole, category Category) []string {
	names := make([]string, 0, len(grants))
	for _, grant := range grants {
		if grant.Role.Category.Name == category {
			names = append(names, grant.Role.Name)
		}
	}
	return names
}

// HasAnyRole reports whether names contains at least one of allowed,
// matching exactly.
func HasAnyRole(names []string, allowed []string) bool {
	for _, name := range names {
		for _, want := range allowed {
			if name == want {
				return true
			}
		}
	}
	return false
}
