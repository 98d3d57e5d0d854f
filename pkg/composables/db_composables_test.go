package composables

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakePool struct {
	tx *fakeTx
}

func (p *fakePool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (p *fakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (p *fakePool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	p.tx = &fakeTx{}
	return p.tx, nil
}

func TestInTx_CommitsOnSuccess(t *testing.T) {
	pool := &fakePool{}
	ctx := WithPool(context.Background(), pool)

	err := InTx(ctx, func(txCtx context.Context) error {
		tx, err := UseTx(txCtx)
		require.NoError(t, err)
		require.Same(t, pool.tx, tx)
		return nil
	})
	require.NoError(t, err)
	require.True(t, pool.tx.committed)
	require.False(t, pool.tx.rolledBack)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	pool := &fakePool{}
	ctx := WithPool(context.Background(), pool)
	boom := errors.New("boom")

	err := InTx(ctx, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.True(t, pool.tx.rolledBack)
	require.False(t, pool.tx.committed)
}

func TestInTxResult_ReturnsValue(t *testing.T) {
	pool := &fakePool{}
	ctx := WithPool(context.Background(), pool)

	got, err := InTxResult(ctx, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestUsePool_Missing(t *testing.T) {
	_, err := UsePool(context.Background())
	require.ErrorIs(t, err, ErrNoPool)

	_, err = UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

func TestUseLogger_FallsBackToStandardLogger(t *testing.T) {
	require.NotNil(t, UseLogger(context.Background()))
}

func TestUsePage(t *testing.T) {
	page, ok := UsePage(httptest.NewRequest("GET", "/services", nil))
	require.True(t, ok)
	require.Equal(t, 1, page)

	page, ok = UsePage(httptest.NewRequest("GET", "/services?page=3", nil))
	require.True(t, ok)
	require.Equal(t, 3, page)

	_, ok = UsePage(httptest.NewRequest("GET", "/services?page=abc", nil))
	require.False(t, ok)

	_, ok = UsePage(httptest.NewRequest("GET", "/services?page=0", nil))
	require.False(t, ok)
}

func TestUseRequestID(t *testing.T) {
	_, ok := UseRequestID(context.Background())
	require.False(t, ok)

	_, ok = UseRequestID(WithRequestID(context.Background(), ""))
	require.False(t, ok)

	id, ok := UseRequestID(WithRequestID(context.Background(), "req-42"))
	require.True(t, ok)
	require.Equal(t, "req-42", id)
}
