package services

import (
	"fmt"

	"panveliq/internal/models"

	"gorm.io/gorm"
)

// PermissionService resolves effective permissions and maintains the
// access-control audit trail.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// PermissionGrid is what the permission-matrix screen renders: the
// role-derived set is informational (checked, disabled), the custom set is
// editable.
type PermissionGrid struct {
	RoleDerived []models.Permission `json:"roleDerived"`
	Custom      []models.Permission `json:"custom"`
	Revoked     []models.Permission `json:"revoked"`
}

// ResolveEffective applies the override rule: a permission is effective when
// the role grants it and no explicit granted=false override exists, or when
// an explicit granted=true override adds it.
func ResolveEffective(rolePerms []models.Permission, overrides []models.UserPermission) map[string]bool {
	effective := make(map[string]bool, len(rolePerms))
	for _, p := range rolePerms {
		effective[p.Name] = true
	}
	for _, up := range overrides {
		if up.Permission == nil {
			continue
		}
		effective[up.Permission.Name] = up.Granted
	}
	for name, ok := range effective {
		if !ok {
			delete(effective, name)
		}
	}
	return effective
}

// BuildGrid splits a user's permissions into role-derived and custom sets.
func BuildGrid(rolePerms []models.Permission, overrides []models.UserPermission) PermissionGrid {
	roleSet := make(map[string]bool, len(rolePerms))
	for _, p := range rolePerms {
		roleSet[p.Name] = true
	}

	grid := PermissionGrid{RoleDerived: rolePerms}
	for _, up := range overrides {
		if up.Permission == nil {
			continue
		}
		if up.Granted && !roleSet[up.Permission.Name] {
			grid.Custom = append(grid.Custom, *up.Permission)
		}
		if !up.Granted && roleSet[up.Permission.Name] {
			grid.Revoked = append(grid.Revoked, *up.Permission)
		}
	}
	return grid
}

// FilterCustomGrants drops any requested permission id that is already
// role-derived; the matrix screen cannot toggle role grants.
func FilterCustomGrants(rolePerms []models.Permission, requestedIDs []string) []string {
	roleIDs := make(map[string]bool, len(rolePerms))
	for _, p := range rolePerms {
		roleIDs[p.ID] = true
	}

	var out []string
	seen := make(map[string]bool, len(requestedIDs))
	for _, id := range requestedIDs {
		if id == "" || roleIDs[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// RolePermissions loads the role-default permission set.
func (s *PermissionService) RolePermissions(role models.UserRole) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role = ? AND role_permissions.is_deleted = ?", role, false).
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	return perms, nil
}

// UserOverrides loads a user's explicit grants/revocations with their
// permission rows preloaded.
func (s *PermissionService) UserOverrides(userID string) ([]models.UserPermission, error) {
	var overrides []models.UserPermission
	err := s.db.Preload("Permission").
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Find(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user permissions: %w", err)
	}
	return overrides, nil
}

// HasPermission reports whether the user effectively holds the named
// permission. Admins hold everything.
func (s *PermissionService) HasPermission(userID string, name string) (bool, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return false, err
	}

	if user.Role == models.UserRoleAdmin {
		return true, nil
	}

	rolePerms, err := s.RolePermissions(user.Role)
	if err != nil {
		return false, err
	}
	overrides, err := s.UserOverrides(userID)
	if err != nil {
		return false, err
	}

	return ResolveEffective(rolePerms, overrides)[name], nil
}

// Grid assembles the permission matrix for one user.
func (s *PermissionService) Grid(userID string) (*PermissionGrid, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	rolePerms, err := s.RolePermissions(user.Role)
	if err != nil {
		return nil, err
	}
	overrides, err := s.UserOverrides(userID)
	if err != nil {
		return nil, err
	}

	grid := BuildGrid(rolePerms, overrides)
	return &grid, nil
}

// SaveCustomGrants replaces a user's explicit grant set with the given
// permission ids, ignoring role-derived ids, and audits every change.
func (s *PermissionService) SaveCustomGrants(actorID, userID string, permissionIDs []string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	rolePerms, err := s.RolePermissions(user.Role)
	if err != nil {
		return err
	}
	wanted := FilterCustomGrants(rolePerms, permissionIDs)

	overrides, err := s.UserOverrides(userID)
	if err != nil {
		return err
	}

	wantedSet := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		wantedSet[id] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Remove grants no longer present. Explicit revocations
		// (granted=false) are left untouched; they are managed by role
		// editing elsewhere.
		for _, up := range overrides {
			if !up.Granted {
				continue
			}
			if wantedSet[up.PermissionID] {
				delete(wantedSet, up.PermissionID)
				continue
			}
			if err := tx.Delete(&models.UserPermission{}, "id = ?", up.ID).Error; err != nil {
				return err
			}
			if err := s.audit(tx, actorID, userID, up.PermissionID, models.AuditActionRevoke, "custom grant removed"); err != nil {
				return err
			}
		}

		// Add the new grants.
		for id := range wantedSet {
			up := models.UserPermission{
				UserID:       userID,
				PermissionID: id,
				Granted:      true,
			}
			if err := tx.Create(&up).Error; err != nil {
				return err
			}
			if err := s.audit(tx, actorID, userID, id, models.AuditActionGrant, "custom grant added"); err != nil {
				return err
			}
		}

		return nil
	})
}

// Audit appends a row to the access-control trail outside a transaction.
func (s *PermissionService) Audit(actorID, targetUserID, permissionID string, action models.AuditAction, detail string) error {
	return s.audit(s.db, actorID, targetUserID, permissionID, action, detail)
}

func (s *PermissionService) audit(tx *gorm.DB, actorID, targetUserID, permissionID string, action models.AuditAction, detail string) error {
	entry := models.AccessControlAudit{
		ActorID:      actorID,
		TargetUserID: targetUserID,
		PermissionID: permissionID,
		Action:       action,
		Detail:       detail,
	}
	return tx.Create(&entry).Error
}
