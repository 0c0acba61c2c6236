// Package authz is the authorization gate: a pure decision function over an
// actor, a resource and an action. It performs no I/O and never mutates
// anything; the actor arrives with its roles preloaded and the resource
// carries its ownership and visibility facts. Denial is a return value, not
// an error.
package authz

import (
	"fmt"

	"locality/internal/domain/roles"
	"locality/internal/domain/stores"
	"locality/internal/domain/users"
)

type DenyReason string

const (
	// DenyUnauthenticated: no identity attached to the request. Maps to 401.
	DenyUnauthenticated DenyReason = "unauthenticated"
	// DenyInsufficientPrivilege: identity present, no grant. Maps to 403.
	DenyInsufficientPrivilege DenyReason = "insufficient_privilege"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
	// RequiredPermission names the grant that would have allowed the denied
	// action, e.g. "verify on stores". Only set on privilege denials.
	RequiredPermission string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func denyUnauthenticated() Decision {
	return Decision{Reason: DenyUnauthenticated}
}

func denyPrivilege(resource string, action roles.Action) Decision {
	return Decision{
		Reason:             DenyInsufficientPrivilege,
		RequiredPermission: fmt.Sprintf("%s on %s", action, resource),
	}
}

// ownershipActions are what owning a store grants, independent of any role.
// Verification is deliberately not among them.
var ownershipActions = map[roles.Action]struct{}{
	roles.ActionCreate: {},
	roles.ActionRead:   {},
	roles.ActionUpdate: {},
	roles.ActionDelete: {},
}

// Authorize decides whether actor may perform action on a store. actor may be
// nil (anonymous); store may be nil for collection-level actions like create.
func Authorize(actor *users.User, store *stores.Store, action roles.Action) Decision {
	return AuthorizeOn(actor, stores.ResourceName, store, action)
}

// AuthorizeOn is the general form, letting callers gate a different resource
// name (e.g. "analytics") against the same store instance facts.
//
// Evaluated in order, first match wins:
//  1. admin role
//  2. ownership (full CRUD on one's own store, regardless of role grants)
//  3. any assigned role granting (resource, action)
//  4. public-read carve-out: a verified AND active store is readable by
//     anyone, anonymous included — kept as its own branch on purpose rather
//     than folded into role grants
//  5. deny, distinguishing missing identity from missing privilege
func AuthorizeOn(actor *users.User, resource string, store *stores.Store, action roles.Action) Decision {
	if actor != nil {
		if actor.HasRole(roles.RoleAdmin) {
			return allow()
		}

		if store != nil && actor.ID == store.OwnerID {
			if _, ok := ownershipActions[action]; ok {
				return allow()
			}
		}

		for i := range actor.Roles {
			if actor.Roles[i].HasPermission(resource, action) {
				return allow()
			}
		}
	}

	if action == roles.ActionRead && resource == stores.ResourceName &&
		store != nil && store.PubliclyVisible() {
		return allow()
	}

	if actor == nil {
		return denyUnauthenticated()
	}
	return denyPrivilege(resource, action)
}
