package roles

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrRoleNotFound = errors.New("role not found")
)

type RoleName string

const (
	RoleAdmin      RoleName = "admin"
	RoleStoreOwner RoleName = "store_owner"
	RoleModerator  RoleName = "moderator"
	RoleCustomer   RoleName = "customer"
)

// Action is one of the operations a role can be granted on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionVerify Action = "verify"
)

// knownActions is the closed set accepted when permission documents are loaded.
// A typo in seeded data fails loudly instead of becoming a silent deny hole.
var knownActions = map[Action]struct{}{
	ActionCreate: {},
	ActionRead:   {},
	ActionUpdate: {},
	ActionDelete: {},
	ActionVerify: {},
}

// PermissionSet maps a resource name ("stores", "analytics", ...) to the
// actions granted on it. Stored as a JSONB document on the roles table.
type PermissionSet map[string][]Action

// Validate checks every action in the set against the known action enum.
func (p PermissionSet) Validate() error {
	for resource, actions := range p {
		for _, a := range actions {
			if _, ok := knownActions[a]; !ok {
				return fmt.Errorf("role permissions: unknown action %q on resource %q", a, resource)
			}
		}
	}
	return nil
}

type Role struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Permissions PermissionSet `json:"permissions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// HasPermission reports whether this role grants action on resource.
// Grants are resource-scoped with no wildcard or hierarchy semantics: an
// absent resource key, a nil map, or a missing action all answer false.
func (r *Role) HasPermission(resource string, action Action) bool {
	if r == nil || r.Permissions == nil {
		return false
	}
	actions, ok := r.Permissions[resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

type UserRole struct {
	UserID     int64     `json:"user_id"`
	RoleID     int64     `json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type Store interface {
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
	GetUserRoles(ctx context.Context, userID int64) ([]Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	UpdatePermissions(ctx context.Context, roleID int64, perms PermissionSet) error
}
