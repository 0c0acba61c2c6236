package analytics

import (
	"context"
	"errors"
	"time"
)

var ErrAggregateNotFound = errors.New("daily aggregate not found")

// ResourceName is the permission resource for analytics, as it appears in
// role permission documents.
const ResourceName = "analytics"

// DailyAggregate is one recomputable summary row per (store, calendar date).
// It is derived entirely by replaying that day's visit and interaction rows,
// so re-running the aggregation is always safe.
type DailyAggregate struct {
	ID      int64     `json:"id"`
	StoreID int64     `json:"store_id"`
	Date    time.Time `json:"date"`

	TotalVisits    int     `json:"total_visits"`
	UniqueVisitors int     `json:"unique_visitors"`
	TotalDuration  int64   `json:"total_duration_seconds"`
	AvgDuration    float64 `json:"avg_duration_seconds"`
	BounceRate     float64 `json:"bounce_rate"`

	DesktopVisits int `json:"desktop_visits"`
	MobileVisits  int `json:"mobile_visits"`
	TabletVisits  int `json:"tablet_visits"`

	MenuViews    int `json:"menu_views"`
	GalleryViews int `json:"gallery_views"`

	ComputedAt time.Time `json:"computed_at"`
}

type Store interface {
	Upsert(ctx context.Context, agg *DailyAggregate) error
	GetByStoreAndDate(ctx context.Context, storeID int64, date time.Time) (*DailyAggregate, error)
	ListByStore(ctx context.Context, storeID int64, from, to time.Time) ([]DailyAggregate, error)
}
