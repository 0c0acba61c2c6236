package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	query := `
        INSERT INTO user_roles (user_id, role_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, userID, roleID)
	return err
}

func (r *Repository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`
	result, err := r.db.Exec(ctx, query, userID, roleID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w for user_id=%d role_id=%d", ErrRoleNotFound, userID, roleID)
	}
	return nil
}

func (r *Repository) GetUserRoles(ctx context.Context, userID int64) ([]Role, error) {
	query := `
        SELECT r.id, r.name, r.description, r.permissions, r.created_at, r.updated_at
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (r *Repository) GetByName(ctx context.Context, name string) (*Role, error) {
	query := `
        SELECT id, name, description, permissions, created_at, updated_at
        FROM roles
        WHERE name = $1
    `
	row := r.db.QueryRow(ctx, query, name)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *Repository) List(ctx context.Context) ([]Role, error) {
	query := `
        SELECT id, name, description, permissions, created_at, updated_at
        FROM roles
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (r *Repository) UpdatePermissions(ctx context.Context, roleID int64, perms PermissionSet) error {
	if err := perms.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}

	query := `
        UPDATE roles
        SET permissions = $1, updated_at = now()
        WHERE id = $2
    `
	result, err := r.db.Exec(ctx, query, raw, roleID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// scanRole decodes a role row including the JSONB permissions document.
// Malformed documents are rejected here so a bad seed never reaches the gate.
func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	var rawPerms []byte
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &rawPerms, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	if len(rawPerms) > 0 {
		if err := json.Unmarshal(rawPerms, &role.Permissions); err != nil {
			return nil, fmt.Errorf("role %q: decode permissions: %w", role.Name, err)
		}
		if err := role.Permissions.Validate(); err != nil {
			return nil, err
		}
	}
	return &role, nil
}
