package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	execSQL   []string
	commits   int
	rollbacks int
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}

type fakeBeginner struct {
	tx *fakeTx
}

func (b *fakeBeginner) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return b.tx, nil
}

func TestWithApprovalTxCommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	c := &Container{pool: &fakeBeginner{tx: tx}}

	err := c.WithApprovalTx(context.Background(), func(a *ApprovalTx) error {
		require.NotNil(t, a.Stores)
		require.NotNil(t, a.Registrations)

		// Writes inside the unit of work run on the transaction.
		return a.Registrations.MarkRequestApproved(context.Background(), 1, 2, nil)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tx.commits)
	require.Len(t, tx.execSQL, 1)
	assert.Contains(t, tx.execSQL[0], "registration_requests")
}

func TestWithApprovalTxRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	c := &Container{pool: &fakeBeginner{tx: tx}}

	boom := errors.New("mark approved failed")
	err := c.WithApprovalTx(context.Background(), func(a *ApprovalTx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Zero(t, tx.commits)
	assert.GreaterOrEqual(t, tx.rollbacks, 1)
}

func TestWithApprovalTxNilPool(t *testing.T) {
	c := &Container{}

	err := c.WithApprovalTx(context.Background(), func(a *ApprovalTx) error {
		t.Fatal("unit of work must not run without a pool")
		return nil
	})
	assert.Error(t, err)
}
