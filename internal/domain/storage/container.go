package storage

import (
	"context"
	"fmt"

	"locality/internal/domain/analytics"
	"locality/internal/domain/registrations"
	"locality/internal/domain/roles"
	"locality/internal/domain/stores"
	"locality/internal/domain/users"
	"locality/internal/domain/visits"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txBeginner is what WithApprovalTx needs from the pool; narrowed to an
// interface so the helper is testable without a live database.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Container struct {
	pool          txBeginner // IMPORTANT: set the pool so WithApprovalTx works
	Users         users.Store
	Roles         roles.Store
	Stores        stores.Repo
	Registrations registrations.RequestStore
	Visits        visits.Store
	Analytics     analytics.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:          db,
		Users:         users.NewRepository(db),
		Roles:         roles.NewRepository(db),
		Stores:        stores.NewRepository(db),
		Registrations: registrations.NewRepository(db),
		Visits:        visits.NewRepository(db),
		Analytics:     analytics.NewRepository(db),
	}
}

// ApprovalTx is a temporary, tx-scoped set of repos for the registration
// approval unit of work: creating the store and marking the request approved
// must land together or not at all.
type ApprovalTx struct {
	Stores        stores.Repo
	Registrations registrations.RequestStore
}

// WithApprovalTx runs an approval unit of work atomically.
func (c *Container) WithApprovalTx(ctx context.Context, fn func(a *ApprovalTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	a := &ApprovalTx{
		Stores:        stores.NewRepository(tx),
		Registrations: registrations.NewRepository(tx),
	}

	if err := fn(a); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
