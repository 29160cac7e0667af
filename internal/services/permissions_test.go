package services

import (
	"testing"

	"panveliq/internal/models"

	"github.com/stretchr/testify/assert"
)

func perm(id, name string) models.Permission {
	p := models.Permission{Name: name, Resource: "x", Action: "y"}
	p.ID = id
	return p
}

func override(permID string, granted bool, p *models.Permission) models.UserPermission {
	return models.UserPermission{PermissionID: permID, Granted: granted, Permission: p}
}

func TestResolveEffectiveRoleOnly(t *testing.T) {
	rolePerms := []models.Permission{perm("1", "campaigns:read"), perm("2", "campaigns:create")}

	effective := ResolveEffective(rolePerms, nil)
	assert.True(t, effective["campaigns:read"])
	assert.True(t, effective["campaigns:create"])
	assert.False(t, effective["users:delete"])
}

func TestResolveEffectiveExplicitRevocationWins(t *testing.T) {
	p := perm("1", "campaigns:send")
	rolePerms := []models.Permission{p}
	overrides := []models.UserPermission{override("1", false, &p)}

	effective := ResolveEffective(rolePerms, overrides)
	assert.NotContains(t, effective, "campaigns:send")
}

func TestResolveEffectiveExplicitGrantAdds(t *testing.T) {
	extra := perm("9", "users:suspend")
	overrides := []models.UserPermission{override("9", true, &extra)}

	effective := ResolveEffective(nil, overrides)
	assert.True(t, effective["users:suspend"])
}

func TestResolveEffectiveNilPermissionIgnored(t *testing.T) {
	rolePerms := []models.Permission{perm("1", "campaigns:read")}
	overrides := []models.UserPermission{{PermissionID: "1", Granted: false}}

	effective := ResolveEffective(rolePerms, overrides)
	assert.True(t, effective["campaigns:read"])
}

func TestBuildGrid(t *testing.T) {
	roleRead := perm("1", "campaigns:read")
	roleSend := perm("2", "campaigns:send")
	extra := perm("3", "users:suspend")

	grid := BuildGrid(
		[]models.Permission{roleRead, roleSend},
		[]models.UserPermission{
			override("3", true, &extra),
			override("2", false, &roleSend),
		},
	)

	assert.Len(t, grid.RoleDerived, 2)
	assert.Len(t, grid.Custom, 1)
	assert.Equal(t, "users:suspend", grid.Custom[0].Name)
	assert.Len(t, grid.Revoked, 1)
	assert.Equal(t, "campaigns:send", grid.Revoked[0].Name)
}

func TestFilterCustomGrantsDropsRoleDerived(t *testing.T) {
	rolePerms := []models.Permission{perm("1", "campaigns:read")}

	out := FilterCustomGrants(rolePerms, []string{"1", "2", "3"})
	assert.Equal(t, []string{"2", "3"}, out)
}

func TestFilterCustomGrantsDedups(t *testing.T) {
	out := FilterCustomGrants(nil, []string{"2", "2", "", "3"})
	assert.Equal(t, []string{"2", "3"}, out)
}
