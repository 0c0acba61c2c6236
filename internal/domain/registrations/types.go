package registrations

import (
	"context"
	"errors"
	"time"
)

var ErrRequestNotFound = errors.New("registration request not found")

type RequestStatus string

const (
	RequestSubmitted RequestStatus = "submitted"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
)

// RegistrationRequest is a public-submitted business registration. It is
// not a store yet; approval creates the store row with an assigned owner.
type RegistrationRequest struct {
	ID           int64   `json:"id"`
	BusinessName string  `json:"business_name"`
	Category     string  `json:"category"`
	Address      string  `json:"address"`
	PhoneNumber  string  `json:"phone_number"`
	ContactEmail string  `json:"contact_email"`
	Description  *string `json:"description,omitempty"`
	Website      *string `json:"website,omitempty"`

	Status    RequestStatus `json:"status"`
	AdminNote *string       `json:"admin_note,omitempty"`

	RequesterIP        *string `json:"requester_ip,omitempty"`
	RequesterUserAgent *string `json:"requester_user_agent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy *int64     `json:"reviewed_by,omitempty"`
}

type CreateRequestInput struct {
	BusinessName string
	Category     string
	Address      string
	PhoneNumber  string
	ContactEmail string
	Description  *string
	Website      *string

	RequesterIP        *string
	RequesterUserAgent *string
}

type RequestFilter struct {
	Status *RequestStatus
	Page   int
	Limit  int
}

type RequestStore interface {
	CreateRequest(ctx context.Context, in *CreateRequestInput) (*RegistrationRequest, error)
	GetRequestByID(ctx context.Context, requestID int64) (*RegistrationRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]RegistrationRequest, error)

	MarkRequestApproved(ctx context.Context, requestID int64, reviewedBy int64, adminNote *string) error
	MarkRequestRejected(ctx context.Context, requestID int64, reviewedBy int64, adminNote *string) error
}
