package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Upsert writes the aggregate keyed by (store_id, date). Recomputing a day
// overwrites the previous snapshot; the unique constraint guarantees a single
// row per key.
func (r *Repository) Upsert(ctx context.Context, agg *DailyAggregate) error {
	const q = `
		INSERT INTO daily_store_analytics (
			store_id, date,
			total_visits, unique_visitors,
			total_duration_seconds, avg_duration_seconds, bounce_rate,
			desktop_visits, mobile_visits, tablet_visits,
			menu_views, gallery_views,
			computed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW()
		)
		ON CONFLICT (store_id, date) DO UPDATE SET
			total_visits = EXCLUDED.total_visits,
			unique_visitors = EXCLUDED.unique_visitors,
			total_duration_seconds = EXCLUDED.total_duration_seconds,
			avg_duration_seconds = EXCLUDED.avg_duration_seconds,
			bounce_rate = EXCLUDED.bounce_rate,
			desktop_visits = EXCLUDED.desktop_visits,
			mobile_visits = EXCLUDED.mobile_visits,
			tablet_visits = EXCLUDED.tablet_visits,
			menu_views = EXCLUDED.menu_views,
			gallery_views = EXCLUDED.gallery_views,
			computed_at = NOW()
		RETURNING id, computed_at
	`

	err := r.db.QueryRow(ctx, q,
		agg.StoreID,
		agg.Date,
		agg.TotalVisits,
		agg.UniqueVisitors,
		agg.TotalDuration,
		agg.AvgDuration,
		agg.BounceRate,
		agg.DesktopVisits,
		agg.MobileVisits,
		agg.TabletVisits,
		agg.MenuViews,
		agg.GalleryViews,
	).Scan(&agg.ID, &agg.ComputedAt)
	if err != nil {
		return fmt.Errorf("upsert daily aggregate: %w", err)
	}
	return nil
}

func (r *Repository) GetByStoreAndDate(ctx context.Context, storeID int64, date time.Time) (*DailyAggregate, error) {
	const q = `
		SELECT
			id, store_id, date,
			total_visits, unique_visitors,
			total_duration_seconds, avg_duration_seconds, bounce_rate,
			desktop_visits, mobile_visits, tablet_visits,
			menu_views, gallery_views,
			computed_at
		FROM daily_store_analytics
		WHERE store_id = $1 AND date = $2
	`

	agg := &DailyAggregate{}
	err := r.db.QueryRow(ctx, q, storeID, date).Scan(
		&agg.ID,
		&agg.StoreID,
		&agg.Date,
		&agg.TotalVisits,
		&agg.UniqueVisitors,
		&agg.TotalDuration,
		&agg.AvgDuration,
		&agg.BounceRate,
		&agg.DesktopVisits,
		&agg.MobileVisits,
		&agg.TabletVisits,
		&agg.MenuViews,
		&agg.GalleryViews,
		&agg.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAggregateNotFound
		}
		return nil, err
	}
	return agg, nil
}

func (r *Repository) ListByStore(ctx context.Context, storeID int64, from, to time.Time) ([]DailyAggregate, error) {
	const q = `
		SELECT
			id, store_id, date,
			total_visits, unique_visitors,
			total_duration_seconds, avg_duration_seconds, bounce_rate,
			desktop_visits, mobile_visits, tablet_visits,
			menu_views, gallery_views,
			computed_at
		FROM daily_store_analytics
		WHERE store_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, q, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily aggregates: %w", err)
	}
	defer rows.Close()

	var out []DailyAggregate
	for rows.Next() {
		var agg DailyAggregate
		if err := rows.Scan(
			&agg.ID,
			&agg.StoreID,
			&agg.Date,
			&agg.TotalVisits,
			&agg.UniqueVisitors,
			&agg.TotalDuration,
			&agg.AvgDuration,
			&agg.BounceRate,
			&agg.DesktopVisits,
			&agg.MobileVisits,
			&agg.TabletVisits,
			&agg.MenuViews,
			&agg.GalleryViews,
			&agg.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("scan daily aggregate: %w", err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}
