package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locality/internal/useragent"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// TrackVisit appends a visit row. The user-agent is classified here so the
// aggregation job never has to re-parse raw strings.
func (r *Repository) TrackVisit(ctx context.Context, in *TrackVisitInput) (*Visit, error) {
	cls := useragent.Classify(in.UserAgent)

	const q = `
		INSERT INTO visits (
			store_id, user_id, session_id,
			ip, user_agent, device, browser, os
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, started_at
	`

	v := &Visit{
		StoreID:   in.StoreID,
		UserID:    in.UserID,
		SessionID: in.SessionID,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Device:    cls.Device,
		Browser:   cls.Browser,
		OS:        cls.OS,
	}

	err := r.db.QueryRow(ctx, q,
		in.StoreID,
		in.UserID,
		in.SessionID,
		in.IP,
		in.UserAgent,
		string(cls.Device),
		cls.Browser,
		cls.OS,
	).Scan(&v.ID, &v.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("track visit: %w", err)
	}

	return v, nil
}

// EndVisit closes a visit, computing the duration from the stored start time
// in a single UPDATE so concurrent double-ends cannot interleave between a
// read and a write. Calling it again simply recomputes the duration.
func (r *Repository) EndVisit(ctx context.Context, visitID int64) (*Visit, error) {
	const q = `
		UPDATE visits
		SET
			ended_at = NOW(),
			duration_seconds = FLOOR(EXTRACT(EPOCH FROM (NOW() - started_at)))
		WHERE id = $1
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, q, visitID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("end visit: %w", err)
	}

	return r.GetVisitByID(ctx, visitID)
}

func (r *Repository) GetVisitByID(ctx context.Context, visitID int64) (*Visit, error) {
	const q = `
		SELECT
			id, store_id, user_id, session_id,
			ip, user_agent, device, browser, os,
			started_at, ended_at, duration_seconds
		FROM visits
		WHERE id = $1
	`

	v := &Visit{}
	err := r.db.QueryRow(ctx, q, visitID).Scan(
		&v.ID,
		&v.StoreID,
		&v.UserID,
		&v.SessionID,
		&v.IP,
		&v.UserAgent,
		&v.Device,
		&v.Browser,
		&v.OS,
		&v.StartedAt,
		&v.EndedAt,
		&v.DurationSeconds,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListByStoreAndDay returns visits whose start timestamp falls on the given
// server-local calendar day.
func (r *Repository) ListByStoreAndDay(ctx context.Context, storeID int64, day time.Time) ([]Visit, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	const q = `
		SELECT
			id, store_id, user_id, session_id,
			ip, user_agent, device, browser, os,
			started_at, ended_at, duration_seconds
		FROM visits
		WHERE store_id = $1 AND started_at >= $2 AND started_at < $3
		ORDER BY started_at
	`

	rows, err := r.db.Query(ctx, q, storeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(
			&v.ID,
			&v.StoreID,
			&v.UserID,
			&v.SessionID,
			&v.IP,
			&v.UserAgent,
			&v.Device,
			&v.Browser,
			&v.OS,
			&v.StartedAt,
			&v.EndedAt,
			&v.DurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// StoreIDsWithVisits returns the stores that received at least one visit on
// the given day. The nightly aggregation only touches these.
func (r *Repository) StoreIDsWithVisits(ctx context.Context, day time.Time) ([]int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	const q = `
		SELECT DISTINCT store_id
		FROM visits
		WHERE started_at >= $1 AND started_at < $2
	`

	rows, err := r.db.Query(ctx, q, start, end)
	if err != nil {
		return nil, fmt.Errorf("list visited stores: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repository) RecordInteraction(ctx context.Context, visitID, storeID int64, section string) error {
	const q = `
		INSERT INTO interactions (visit_id, store_id, section)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, q, visitID, storeID, section)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

func (r *Repository) ListInteractionsByStoreAndDay(ctx context.Context, storeID int64, day time.Time) ([]Interaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	const q = `
		SELECT id, visit_id, store_id, section, occurred_at
		FROM interactions
		WHERE store_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at
	`

	rows, err := r.db.Query(ctx, q, storeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.ID, &in.VisitID, &in.StoreID, &in.Section, &in.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
