package visits

import (
	"context"
	"errors"
	"time"

	"locality/internal/useragent"
)

var ErrVisitNotFound = errors.New("visit not found")

// Interaction sections tracked per visit.
const (
	SectionMenu    = "menu"
	SectionGallery = "gallery"
)

// Visit is an append-only record of one page view of a store. Rows are never
// mutated after creation except to close them (set ended_at + duration).
type Visit struct {
	ID        int64  `json:"id"`
	StoreID   int64  `json:"store_id"`
	UserID    *int64 `json:"user_id,omitempty"`
	SessionID string `json:"session_id"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	Device  useragent.DeviceType `json:"device"`
	Browser string               `json:"browser"`
	OS      string               `json:"os"`

	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

// Interaction is a per-section event (menu view, gallery view) tied to a visit.
type Interaction struct {
	ID         int64     `json:"id"`
	VisitID    int64     `json:"visit_id"`
	StoreID    int64     `json:"store_id"`
	Section    string    `json:"section"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TrackVisitInput struct {
	StoreID   int64
	UserID    *int64
	SessionID string
	IP        string
	UserAgent string
}

type Store interface {
	TrackVisit(ctx context.Context, in *TrackVisitInput) (*Visit, error)
	EndVisit(ctx context.Context, visitID int64) (*Visit, error)
	GetVisitByID(ctx context.Context, visitID int64) (*Visit, error)
	ListByStoreAndDay(ctx context.Context, storeID int64, day time.Time) ([]Visit, error)
	StoreIDsWithVisits(ctx context.Context, day time.Time) ([]int64, error)

	RecordInteraction(ctx context.Context, visitID, storeID int64, section string) error
	ListInteractionsByStoreAndDay(ctx context.Context, storeID int64, day time.Time) ([]Interaction, error)
}
