package registrations

import (
	"context"
	"database/sql"
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
func NewRepository(q dbx.Querier) RequestStore {
	return &Repository{db: q}
}

func (r *Repository) CreateRequest(ctx context.Context, in *CreateRequestInput) (*RegistrationRequest, error) {
	const q = `
		INSERT INTO registration_requests (
			business_name, category, address,
			phone_number, contact_email,
			description, website,
			requester_ip, requester_user_agent
		) VALUES (
			$1, $2, $3,
			$4, $5,
			$6, $7,
			$8, $9
		)
		RETURNING id, status, created_at, updated_at
	`

	rr := &RegistrationRequest{
		BusinessName:       in.BusinessName,
		Category:           in.Category,
		Address:            in.Address,
		PhoneNumber:        in.PhoneNumber,
		ContactEmail:       in.ContactEmail,
		Description:        in.Description,
		Website:            in.Website,
		RequesterIP:        in.RequesterIP,
		RequesterUserAgent: in.RequesterUserAgent,
	}

	err := r.db.QueryRow(ctx, q,
		in.BusinessName,
		in.Category,
		in.Address,
		in.PhoneNumber,
		in.ContactEmail,
		in.Description,
		in.Website,
		in.RequesterIP,
		in.RequesterUserAgent,
	).Scan(
		&rr.ID,
		&rr.Status,
		&rr.CreatedAt,
		&rr.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("create registration_request: %w", err)
	}

	return rr, nil
}

func (r *Repository) GetRequestByID(ctx context.Context, requestID int64) (*RegistrationRequest, error) {
	const q = `
		SELECT
			id,
			business_name,
			category,
			address,
			phone_number,
			contact_email,
			description,
			website,
			status,
			admin_note,
			requester_ip,
			requester_user_agent,
			created_at,
			updated_at,
			reviewed_at,
			reviewed_by
		FROM registration_requests
		WHERE id = $1
	`

	var (
		rr         RegistrationRequest
		adminNote  sql.NullString
		reqIP      sql.NullString
		reqUA      sql.NullString
		reviewedAt sql.NullTime
		reviewedBy sql.NullInt64
	)

	err := r.db.QueryRow(ctx, q, requestID).Scan(
		&rr.ID,
		&rr.BusinessName,
		&rr.Category,
		&rr.Address,
		&rr.PhoneNumber,
		&rr.ContactEmail,
		&rr.Description,
		&rr.Website,
		&rr.Status,
		&adminNote,
		&reqIP,
		&reqUA,
		&rr.CreatedAt,
		&rr.UpdatedAt,
		&reviewedAt,
		&reviewedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("get registration_request: %w", err)
	}

	if adminNote.Valid {
		rr.AdminNote = &adminNote.String
	}
	if reqIP.Valid {
		rr.RequesterIP = &reqIP.String
	}
	if reqUA.Valid {
		rr.RequesterUserAgent = &reqUA.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		rr.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		id := reviewedBy.Int64
		rr.ReviewedBy = &id
	}

	return &rr, nil
}

func (r *Repository) ListRequests(ctx context.Context, filter RequestFilter) ([]RegistrationRequest, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 60 {
		filter.Limit = 20
	}

	where := []string{"1=1"}
	args := []interface{}{}
	arg := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", arg))
		args = append(args, string(*filter.Status))
		arg++
	}

	// pagination
	limitPos := arg
	offsetPos := arg + 1
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	q := fmt.Sprintf(`
		SELECT
			id,
			business_name,
			category,
			address,
			phone_number,
			contact_email,
			description,
			website,
			status,
			admin_note,
			created_at,
			updated_at
		FROM registration_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), limitPos, offsetPos)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list registration_requests: %w", err)
	}
	defer rows.Close()

	var out []RegistrationRequest
	for rows.Next() {
		var rr RegistrationRequest
		var adminNote sql.NullString

		if err := rows.Scan(
			&rr.ID,
			&rr.BusinessName,
			&rr.Category,
			&rr.Address,
			&rr.PhoneNumber,
			&rr.ContactEmail,
			&rr.Description,
			&rr.Website,
			&rr.Status,
			&adminNote,
			&rr.CreatedAt,
			&rr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan registration_requests: %w", err)
		}

		if adminNote.Valid {
			rr.AdminNote = &adminNote.String
		}
		out = append(out, rr)
	}

	return out, rows.Err()
}

func (r *Repository) MarkRequestApproved(ctx context.Context, requestID int64, reviewedBy int64, adminNote *string) error {
	return r.markReviewed(ctx, requestID, RequestApproved, reviewedBy, adminNote)
}

func (r *Repository) MarkRequestRejected(ctx context.Context, requestID int64, reviewedBy int64, adminNote *string) error {
	return r.markReviewed(ctx, requestID, RequestRejected, reviewedBy, adminNote)
}

// markReviewed transitions a request out of submitted. The WHERE guard keeps
// a request from being reviewed twice.
func (r *Repository) markReviewed(ctx context.Context, requestID int64, status RequestStatus, reviewedBy int64, adminNote *string) error {
	const q = `
		UPDATE registration_requests
		SET status = $1, reviewed_by = $2, reviewed_at = NOW(), admin_note = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'submitted'
	`

	result, err := r.db.Exec(ctx, q, string(status), reviewedBy, adminNote, requestID)
	if err != nil {
		return fmt.Errorf("mark registration_request %s: %w", status, err)
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}
