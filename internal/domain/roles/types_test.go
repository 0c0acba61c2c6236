package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	role := &Role{
		Name: "moderator",
		Permissions: PermissionSet{
			"stores": {ActionRead, ActionUpdate},
		},
	}

	assert.True(t, role.HasPermission("stores", ActionRead))
	assert.True(t, role.HasPermission("stores", ActionUpdate))

	// Granted actions do not leak onto other actions or resources.
	assert.False(t, role.HasPermission("stores", ActionDelete))
	assert.False(t, role.HasPermission("stores", ActionVerify))
	assert.False(t, role.HasPermission("analytics", ActionRead))
}

func TestHasPermissionAbsentResource(t *testing.T) {
	role := &Role{Name: "customer", Permissions: PermissionSet{}}

	assert.False(t, role.HasPermission("stores", ActionRead))
}

func TestHasPermissionNilSafety(t *testing.T) {
	var role *Role
	assert.False(t, role.HasPermission("stores", ActionRead))

	role = &Role{Name: "empty"}
	assert.False(t, role.HasPermission("stores", ActionRead))
}

func TestPermissionSetValidate(t *testing.T) {
	valid := PermissionSet{
		"stores":    {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionVerify},
		"analytics": {ActionRead},
	}
	require.NoError(t, valid.Validate())

	invalid := PermissionSet{
		"stores": {ActionRead, Action("publish")},
	}
	err := invalid.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish")
	assert.Contains(t, err.Error(), "stores")
}

func TestPermissionSetValidateEmpty(t *testing.T) {
	assert.NoError(t, PermissionSet{}.Validate())
	assert.NoError(t, PermissionSet(nil).Validate())
}
