package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeCreateAssignsUUID(t *testing.T) {
	var b Base
	require.NoError(t, b.BeforeCreate(nil))

	_, err := uuid.Parse(b.ID)
	assert.NoError(t, err)
}

func TestBeforeCreateKeepsExistingID(t *testing.T) {
	b := Base{ID: "fixed-id"}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, "fixed-id", b.ID)
}

func TestIsValidUserRole(t *testing.T) {
	for _, role := range []UserRole{UserRoleClient, UserRoleAdmin, UserRoleEmployee, UserRoleDepartmentLeader} {
		assert.True(t, IsValidUserRole(role), string(role))
	}
	assert.False(t, IsValidUserRole("superuser"))
	assert.False(t, IsValidUserRole(""))
}

func TestIsEmployeeRole(t *testing.T) {
	assert.True(t, IsEmployeeRole(UserRoleEmployee))
	assert.True(t, IsEmployeeRole(UserRoleDepartmentLeader))
	assert.False(t, IsEmployeeRole(UserRoleClient))
	assert.False(t, IsEmployeeRole(UserRoleAdmin))
}

func TestRolePermissionScopesCoverAllRoles(t *testing.T) {
	for _, role := range []UserRole{UserRoleClient, UserRoleAdmin, UserRoleEmployee, UserRoleDepartmentLeader} {
		assert.NotEmpty(t, RolePermissionScopes(role), string(role))
	}
}

func TestClientScopesAreReadOnly(t *testing.T) {
	for _, scope := range RolePermissionScopes(UserRoleClient) {
		assert.Contains(t, scope, ":read")
	}
}
