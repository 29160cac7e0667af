package models

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default permission catalog, one row per resource/action pair.
var defaultPermissions = []Permission{
	{Name: "campaigns:create", Resource: "campaigns", Action: "create"},
	{Name: "campaigns:read", Resource: "campaigns", Action: "read"},
	{Name: "campaigns:update", Resource: "campaigns", Action: "update"},
	{Name: "campaigns:delete", Resource: "campaigns", Action: "delete"},
	{Name: "campaigns:send", Resource: "campaigns", Action: "send"},

	{Name: "segments:create", Resource: "segments", Action: "create"},
	{Name: "segments:read", Resource: "segments", Action: "read"},
	{Name: "segments:update", Resource: "segments", Action: "update"},
	{Name: "segments:delete", Resource: "segments", Action: "delete"},

	{Name: "flows:create", Resource: "flows", Action: "create"},
	{Name: "flows:read", Resource: "flows", Action: "read"},
	{Name: "flows:update", Resource: "flows", Action: "update"},
	{Name: "flows:delete", Resource: "flows", Action: "delete"},

	{Name: "content:create", Resource: "content", Action: "create"},
	{Name: "content:read", Resource: "content", Action: "read"},
	{Name: "content:update", Resource: "content", Action: "update"},
	{Name: "content:publish", Resource: "content", Action: "publish"},

	{Name: "proposals:create", Resource: "proposals", Action: "create"},
	{Name: "proposals:read", Resource: "proposals", Action: "read"},
	{Name: "proposals:update", Resource: "proposals", Action: "update"},
	{Name: "proposals:delete", Resource: "proposals", Action: "delete"},
	{Name: "proposals:share", Resource: "proposals", Action: "share"},

	{Name: "users:create", Resource: "users", Action: "create"},
	{Name: "users:read", Resource: "users", Action: "read"},
	{Name: "users:update", Resource: "users", Action: "update"},
	{Name: "users:delete", Resource: "users", Action: "delete"},
	{Name: "users:suspend", Resource: "users", Action: "suspend"},

	{Name: "permissions:read", Resource: "permissions", Action: "read"},
	{Name: "permissions:update", Resource: "permissions", Action: "update"},

	{Name: "audit:read", Resource: "audit", Action: "read"},

	{Name: "clients:read", Resource: "clients", Action: "read"},
}

// Role-based permission mappings. `resource:*` expands to every action of
// that resource in the catalog.
var rolePermissionMatrix = map[UserRole][]string{
	UserRoleAdmin: {
		"campaigns:*", "segments:*", "flows:*", "content:*",
		"proposals:*", "users:*", "permissions:*", "audit:*", "clients:*",
	},
	UserRoleDepartmentLeader: {
		"campaigns:*", "segments:*", "flows:*",
		"content:create", "content:read", "content:update",
		"proposals:*",
		"users:read",
		"clients:read",
	},
	UserRoleEmployee: {
		"campaigns:create", "campaigns:read", "campaigns:update", "campaigns:send",
		"segments:create", "segments:read", "segments:update",
		"flows:read",
		"content:create", "content:read", "content:update",
		"proposals:create", "proposals:read", "proposals:update",
		"clients:read",
	},
	UserRoleClient: {
		"campaigns:read",
		"segments:read",
		"content:read",
		"proposals:read",
	},
}

// SeedPermissions creates the permission catalog and the role-default matrix.
func SeedPermissions(db *gorm.DB) error {
	for _, perm := range defaultPermissions {
		if err := db.FirstOrCreate(&perm, Permission{Name: perm.Name}).Error; err != nil {
			return fmt.Errorf("failed to create permission %s: %w", perm.Name, err)
		}
	}

	for role, scopes := range rolePermissionMatrix {
		perms, err := expandScopes(db, scopes)
		if err != nil {
			return fmt.Errorf("role %s: %w", role, err)
		}
		for _, perm := range perms {
			rp := RolePermission{Role: role, PermissionID: perm.ID}
			if err := db.FirstOrCreate(&rp, RolePermission{
				Role:         role,
				PermissionID: perm.ID,
			}).Error; err != nil {
				return fmt.Errorf("failed to create role permission %s/%s: %w", role, perm.Name, err)
			}
		}
	}

	return nil
}

func expandScopes(db *gorm.DB, scopes []string) ([]Permission, error) {
	var out []Permission
	for _, scope := range scopes {
		if strings.HasSuffix(scope, ":*") {
			resource := strings.TrimSuffix(scope, ":*")
			var perms []Permission
			if err := db.Where("resource = ?", resource).Find(&perms).Error; err != nil {
				return nil, fmt.Errorf("failed to find permissions for %s: %w", resource, err)
			}
			out = append(out, perms...)
			continue
		}

		var perm Permission
		if err := db.Where("name = ?", scope).First(&perm).Error; err != nil {
			return nil, fmt.Errorf("failed to find permission %s: %w", scope, err)
		}
		out = append(out, perm)
	}
	return out, nil
}

// RolePermissionScopes returns the configured scope list for a role.
func RolePermissionScopes(role UserRole) []string {
	return rolePermissionMatrix[role]
}

func CreateAdminFromEnv(db *gorm.DB) error {
	var count int64
	db.Model(&User{}).Where("role = ?", UserRoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	email, ok := os.LookupEnv("ADMIN_EMAIL")
	if !ok {
		return fmt.Errorf("ADMIN_EMAIL not set")
	}

	password, ok := os.LookupEnv("ADMIN_PASSWORD")
	if !ok {
		return fmt.Errorf("ADMIN_PASSWORD not set")
	}

	name, ok := os.LookupEnv("ADMIN_NAME")
	if !ok {
		return fmt.Errorf("ADMIN_NAME not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		FirstName: name,
		Email:     email,
		Role:      UserRoleAdmin,
		Status:    UserStatusActive,
		Password:  string(hashedPassword),
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	return nil
}
