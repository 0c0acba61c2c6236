package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"locality/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

// NewRepository accepts either the shared pool or a transaction, so the
// approval unit of work can bind a tx-scoped copy.
func NewRepository(q dbx.Querier) Repo {
	return &Repository{db: q}
}

// CheckIfStoreExists checks if a store with the same name and owner already exists
func (r *Repository) CheckIfStoreExists(ctx context.Context, name string, ownerID int64) (bool, error) {
	query := `
		SELECT id FROM stores WHERE name = $1 AND owner_id = $2
	`

	var existingStoreID int64
	err := r.db.QueryRow(ctx, query, name, ownerID).Scan(&existingStoreID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// Create inserts a new store row. New stores start unverified and active.
func (r *Repository) Create(ctx context.Context, store *Store) error {
	const query = `
    INSERT INTO stores (
      owner_id, public_code, name, category,
      description, address, phone_number, website,
      social_media, operating_hours
    ) VALUES (
      $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
    )
    RETURNING id, is_verified, is_active, created_at, updated_at
    `

	socialMedia, err := json.Marshal(orEmptyMap(store.SocialMedia))
	if err != nil {
		return fmt.Errorf("marshal social_media: %w", err)
	}
	operatingHours, err := json.Marshal(orEmptyMap(store.OperatingHours))
	if err != nil {
		return fmt.Errorf("marshal operating_hours: %w", err)
	}

	row := r.db.QueryRow(ctx, query,
		store.OwnerID,
		store.PublicCode,
		store.Name,
		store.Category,
		store.Description,
		store.Address,
		store.PhoneNumber,
		store.Website,
		socialMedia,
		operatingHours,
	)
	if err := row.Scan(&store.ID, &store.IsVerified, &store.IsActive, &store.CreatedAt, &store.UpdatedAt); err != nil {
		return fmt.Errorf("error scanning insert result: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, storeID int64) (*Store, error) {
	const query = `
		SELECT
			id, owner_id, public_code, name, category,
			description, address, phone_number, website,
			social_media, operating_hours,
			is_verified, is_active,
			verification_date, verification_notes,
			created_at, updated_at
		FROM stores
		WHERE id = $1
	`

	store := &Store{}
	var socialMedia, operatingHours []byte
	err := r.db.QueryRow(ctx, query, storeID).Scan(
		&store.ID,
		&store.OwnerID,
		&store.PublicCode,
		&store.Name,
		&store.Category,
		&store.Description,
		&store.Address,
		&store.PhoneNumber,
		&store.Website,
		&socialMedia,
		&operatingHours,
		&store.IsVerified,
		&store.IsActive,
		&store.VerificationDate,
		&store.VerificationNotes,
		&store.CreatedAt,
		&store.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if len(socialMedia) > 0 {
		if err := json.Unmarshal(socialMedia, &store.SocialMedia); err != nil {
			return nil, fmt.Errorf("decode social_media: %w", err)
		}
	}
	if len(operatingHours) > 0 {
		if err := json.Unmarshal(operatingHours, &store.OperatingHours); err != nil {
			return nil, fmt.Errorf("decode operating_hours: %w", err)
		}
	}

	return store, nil
}

// GetOwnedStores lists every store belonging to a user, active or not,
// verified or not. This backs the owner dashboard, so nothing is filtered.
func (r *Repository) GetOwnedStores(ctx context.Context, userID int64) ([]StoreListing, error) {
	const query = `
		SELECT id, public_code, name, category, address, is_verified, website
		FROM stores
		WHERE owner_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoreListing
	for rows.Next() {
		var l StoreListing
		if err := rows.Scan(&l.ID, &l.PublicCode, &l.Name, &l.Category, &l.Address, &l.IsVerified, &l.Website); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) List(ctx context.Context, filter StoreFilter) ([]StoreListing, error) {
	query := `
		SELECT id, public_code, name, category, address, is_verified, website
		FROM stores
		WHERE is_active = true
	`
	args := []interface{}{}
	argCounter := 1

	if filter.VerifiedOnly {
		query += ` AND is_verified = true`
	}
	if filter.Category != nil {
		query += fmt.Sprintf(` AND category = $%d`, argCounter)
		args = append(args, *filter.Category)
		argCounter++
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 60 {
		limit = 20
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argCounter, argCounter+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoreListing
	for rows.Next() {
		var l StoreListing
		if err := rows.Scan(&l.ID, &l.PublicCode, &l.Name, &l.Category, &l.Address, &l.IsVerified, &l.Website); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update updates a store's data in the database
func (r *Repository) Update(ctx context.Context, storeID int64, updateData map[string]interface{}) error {
	query := "UPDATE stores SET "
	args := []interface{}{}
	argCounter := 1

	for key, value := range updateData {
		switch key {
		case "name", "category", "description", "address", "phone_number", "website":
			query += fmt.Sprintf("%s = $%d, ", key, argCounter)
			args = append(args, value)
			argCounter++
		case "social_media", "operating_hours":
			doc, ok := value.(map[string]string)
			if !ok {
				return fmt.Errorf("invalid %s data", key)
			}
			raw, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", key, err)
			}
			query += fmt.Sprintf("%s = $%d, ", key, argCounter)
			args = append(args, raw)
			argCounter++
		default:
			return fmt.Errorf("unsupported field: %s", key)
		}
	}
	// Trim trailing comma & space
	query = strings.TrimSuffix(query, ", ")
	query += fmt.Sprintf(", updated_at = NOW() WHERE id = $%d", argCounter)
	args = append(args, storeID)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

// Deactivate soft-disables a store. The row and its visit history survive.
func (r *Repository) Deactivate(ctx context.Context, storeID int64) error {
	result, err := r.db.Exec(ctx, `UPDATE stores SET is_active = false, updated_at = NOW() WHERE id = $1`, storeID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (r *Repository) SetVerification(ctx context.Context, storeID int64, verified bool, notes string, reviewerID int64) (*Store, error) {
	// verification_date is stamped only on the transition to verified; a
	// rejection keeps whatever was there before.
	const query = `
		UPDATE stores
		SET
			is_verified = $1,
			verification_notes = $2,
			verification_date = CASE WHEN $1 THEN NOW() ELSE verification_date END,
			verified_by = $3,
			updated_at = NOW()
		WHERE id = $4
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, verified, notes, reviewerID, storeID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("set verification: %w", err)
	}

	return r.GetByID(ctx, storeID)
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
