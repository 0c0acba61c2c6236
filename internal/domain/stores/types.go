package stores

import (
	"context"
	"errors"
	"time"
)

var ErrStoreNotFound = errors.New("store not found")

// ResourceName is the permission resource for stores, as it appears in
// role permission documents.
const ResourceName = "stores"

// Store represents a business listing: a shop, freelancer, service or
// tourism provider. Every store has exactly one owner.
type Store struct {
	ID          int64   `json:"id"`
	OwnerID     int64   `json:"owner_id"`
	PublicCode  string  `json:"public_code"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
	Address     string  `json:"address"`
	PhoneNumber string  `json:"phone_number"`
	Website     *string `json:"website,omitempty"`

	// Nested JSONB documents: platform -> handle, weekday -> "09:00-18:00".
	SocialMedia    map[string]string `json:"social_media,omitempty"`
	OperatingHours map[string]string `json:"operating_hours,omitempty"`

	IsVerified        bool       `json:"is_verified"`
	IsActive          bool       `json:"is_active"`
	VerificationDate  *time.Time `json:"verification_date,omitempty"`
	VerificationNotes *string    `json:"verification_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PubliclyVisible reports whether the store is readable by anyone,
// including anonymous visitors.
func (s *Store) PubliclyVisible() bool {
	return s.IsVerified && s.IsActive
}

type StoreFilter struct {
	Category *string
	// VerifiedOnly restricts the listing to verified+active stores. Always
	// set for anonymous callers.
	VerifiedOnly bool
	Page         int
	Limit        int
}

type StoreListing struct {
	ID         int64   `json:"id"`
	PublicCode string  `json:"public_code"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Address    string  `json:"address"`
	IsVerified bool    `json:"is_verified"`
	Website    *string `json:"website,omitempty"`
}

type Repo interface {
	Create(ctx context.Context, store *Store) error
	GetByID(ctx context.Context, storeID int64) (*Store, error)
	GetOwnedStores(ctx context.Context, userID int64) ([]StoreListing, error)
	CheckIfStoreExists(ctx context.Context, name string, ownerID int64) (bool, error)
	List(ctx context.Context, filter StoreFilter) ([]StoreListing, error)
	Update(ctx context.Context, storeID int64, updateData map[string]interface{}) error
	Deactivate(ctx context.Context, storeID int64) error

	// SetVerification is the only writer of is_verified. Moving to verified
	// stamps verification_date; a rejection leaves it untouched and only
	// records the notes.
	SetVerification(ctx context.Context, storeID int64, verified bool, notes string, reviewerID int64) (*Store, error)
}
