package authz

import (
	"testing"

	"locality/internal/domain/roles"
	"locality/internal/domain/stores"
	"locality/internal/domain/users"

	"github.com/stretchr/testify/assert"
)

func adminUser(id int64) *users.User {
	return &users.User{
		ID:    id,
		Roles: []roles.Role{{Name: string(roles.RoleAdmin)}},
	}
}

func userWithGrants(id int64, perms roles.PermissionSet) *users.User {
	return &users.User{
		ID:    id,
		Roles: []roles.Role{{Name: string(roles.RoleModerator), Permissions: perms}},
	}
}

func TestAdminAllowedEverything(t *testing.T) {
	admin := adminUser(1)
	store := &stores.Store{ID: 10, OwnerID: 2}

	for _, action := range []roles.Action{
		roles.ActionCreate, roles.ActionRead, roles.ActionUpdate, roles.ActionDelete, roles.ActionVerify,
	} {
		d := Authorize(admin, store, action)
		assert.True(t, d.Allowed, "admin should be allowed %s", action)
	}
}

func TestOwnerGetsCRUDOnOwnStore(t *testing.T) {
	owner := &users.User{ID: 2}
	store := &stores.Store{ID: 10, OwnerID: 2}

	for _, action := range []roles.Action{
		roles.ActionCreate, roles.ActionRead, roles.ActionUpdate, roles.ActionDelete,
	} {
		d := Authorize(owner, store, action)
		assert.True(t, d.Allowed, "owner should be allowed %s on own store", action)
	}
}

func TestOwnershipDoesNotGrantVerify(t *testing.T) {
	owner := &users.User{ID: 2}
	store := &stores.Store{ID: 10, OwnerID: 2}

	d := Authorize(owner, store, roles.ActionVerify)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyInsufficientPrivilege, d.Reason)
	assert.Equal(t, "verify on stores", d.RequiredPermission)
}

func TestOwnershipScopedToOwnStore(t *testing.T) {
	owner := &users.User{ID: 2}
	otherStore := &stores.Store{ID: 11, OwnerID: 3}

	d := Authorize(owner, otherStore, roles.ActionUpdate)
	assert.False(t, d.Allowed)
	assert.Equal(t, "update on stores", d.RequiredPermission)
}

func TestRoleGrantAllows(t *testing.T) {
	mod := userWithGrants(5, roles.PermissionSet{
		"stores": {roles.ActionRead, roles.ActionUpdate},
	})
	store := &stores.Store{ID: 10, OwnerID: 2}

	assert.True(t, Authorize(mod, store, roles.ActionRead).Allowed)
	assert.True(t, Authorize(mod, store, roles.ActionUpdate).Allowed)
	assert.False(t, Authorize(mod, store, roles.ActionDelete).Allowed)
}

func TestVerifyRequiresExplicitGrant(t *testing.T) {
	verifier := userWithGrants(5, roles.PermissionSet{
		"stores": {roles.ActionVerify},
	})
	store := &stores.Store{ID: 10, OwnerID: 2}

	assert.True(t, Authorize(verifier, store, roles.ActionVerify).Allowed)
}

func TestPublicReadVerifiedActiveStore(t *testing.T) {
	store := &stores.Store{ID: 10, OwnerID: 2, IsVerified: true, IsActive: true}

	// Anonymous visitor.
	d := Authorize(nil, store, roles.ActionRead)
	assert.True(t, d.Allowed)

	// Authenticated user with no roles at all.
	d = Authorize(&users.User{ID: 7}, store, roles.ActionRead)
	assert.True(t, d.Allowed)
}

func TestPublicReadOnlyCoversRead(t *testing.T) {
	store := &stores.Store{ID: 10, OwnerID: 2, IsVerified: true, IsActive: true}

	d := Authorize(nil, store, roles.ActionUpdate)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyUnauthenticated, d.Reason)
}

func TestUnverifiedStoreNotPublic(t *testing.T) {
	unverified := &stores.Store{ID: 10, OwnerID: 2, IsVerified: false, IsActive: true}
	inactive := &stores.Store{ID: 11, OwnerID: 2, IsVerified: true, IsActive: false}

	for _, store := range []*stores.Store{unverified, inactive} {
		d := Authorize(nil, store, roles.ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyUnauthenticated, d.Reason)

		d = Authorize(&users.User{ID: 7}, store, roles.ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyInsufficientPrivilege, d.Reason)
		assert.Equal(t, "read on stores", d.RequiredPermission)
	}
}

func TestPublicReadCarveOutDoesNotCoverAnalytics(t *testing.T) {
	store := &stores.Store{ID: 10, OwnerID: 2, IsVerified: true, IsActive: true}

	d := AuthorizeOn(nil, "analytics", store, roles.ActionRead)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyUnauthenticated, d.Reason)

	d = AuthorizeOn(&users.User{ID: 7}, "analytics", store, roles.ActionRead)
	assert.False(t, d.Allowed)
	assert.Equal(t, "read on analytics", d.RequiredPermission)
}

func TestOwnerReadsOwnAnalytics(t *testing.T) {
	owner := &users.User{ID: 2}
	store := &stores.Store{ID: 10, OwnerID: 2}

	d := AuthorizeOn(owner, "analytics", store, roles.ActionRead)
	assert.True(t, d.Allowed)
}

func TestCollectionLevelCreate(t *testing.T) {
	// store is nil for collection-level actions; only a grant or admin helps.
	creator := userWithGrants(5, roles.PermissionSet{
		"stores": {roles.ActionCreate},
	})
	assert.True(t, Authorize(creator, nil, roles.ActionCreate).Allowed)

	nobody := &users.User{ID: 6}
	d := Authorize(nobody, nil, roles.ActionCreate)
	assert.False(t, d.Allowed)
	assert.Equal(t, "create on stores", d.RequiredPermission)

	d = Authorize(nil, nil, roles.ActionCreate)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyUnauthenticated, d.Reason)
}
