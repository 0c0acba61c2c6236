package users

import (
	"context"
	"errors"
	"time"

	"locality/internal/domain/roles"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	QueryTimeoutDuration = time.Second * 5
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Password     password  `json:"-"` // Hide password
	RefreshToken string    `json:"-"` // Sensitive data
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Roles are preloaded by the auth middleware so authorization decisions
	// never need a second round trip.
	Roles []roles.Role `json:"roles,omitempty"`
}

// HasRole reports whether one of the user's preloaded roles matches name.
func (u *User) HasRole(name roles.RoleName) bool {
	if u == nil {
		return false
	}
	for i := range u.Roles {
		if u.Roles[i].Name == string(name) {
			return true
		}
	}
	return false
}

// Password struct to store plain text and hash
type password struct {
	text *string `json:"-"` // Hide plaintext password
	hash []byte  `json:"-"` // Hide hashed password
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type Store interface {
	GetByID(context.Context, int64) (*User, error)
	GetByEmail(context.Context, string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, userID int64, updates map[string]interface{}) error
	SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
	DeleteRefreshToken(ctx context.Context, userID int64) error
	GetRefreshToken(ctx context.Context, userID int64) (string, error)
	Deactivate(ctx context.Context, userID int64) error
}
