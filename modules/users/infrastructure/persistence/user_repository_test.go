package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
	"github.com/iota-uz/catalog-api/pkg/constants"
)

type stubTx struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if s.execFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.execFunc(ctx, sql, arguments...)
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.queryRowFunc(ctx, sql, args...)
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

func rowOf(values ...any) stubRow {
	return stubRow{scan: func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(values))
		}
		for i, target := range dest {
			switch v := target.(type) {
			case sql.Scanner:
				if err := v.Scan(values[i]); err != nil {
					return err
				}
			case *int64:
				*v = values[i].(int64)
			case *int:
				*v = values[i].(int)
			case *string:
				*v = values[i].(string)
			case *bool:
				*v = values[i].(bool)
			case *time.Time:
				*v = values[i].(time.Time)
			default:
				return fmt.Errorf("unsupported scan target %T", target)
			}
		}
		return nil
	}}
}

func withTx(tx *stubTx) context.Context {
	return context.WithValue(context.Background(), constants.TxKey, tx)
}

func TestUserRepository_GetByEmail_MapsSupplier(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotSQL string
	var gotArgs []any
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			gotSQL, gotArgs = sql, args
			return rowOf(int64(7), "Jane", "jane@example.com", "hash", true, false, "supplier",
				int64(585274), "Supplier Ltd", 2, now, now, now)
		},
	}
	repo := NewUserRepository()

	u, err := repo.GetByEmail(withTx(tx), " Jane@Example.COM")
	require.NoError(t, err)
	require.Contains(t, gotSQL, "lower(u.email_address) = $1")
	require.Equal(t, []any{"jane@example.com"}, gotArgs)
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, user.RoleSupplier, u.Role)
	require.NotNil(t, u.SupplierID)
	require.Equal(t, int64(585274), *u.SupplierID)
	require.Equal(t, "Supplier Ltd", u.SupplierName)
	require.Equal(t, 2, u.FailedLoginCount)
}

func TestUserRepository_GetByEmailForUpdate_LocksUserRow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotSQL string
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			gotSQL = sql
			return rowOf(int64(7), "Jane", "jane@example.com", "hash", true, false, "buyer",
				nil, nil, 4, now, now, now)
		},
	}

	u, err := NewUserRepository().GetByEmailForUpdate(withTx(tx), "JANE@example.com")
	require.NoError(t, err)
	require.Equal(t, 4, u.FailedLoginCount)
	require.True(t, strings.HasSuffix(strings.TrimSpace(gotSQL), "FOR UPDATE OF u"), gotSQL)
	require.Contains(t, gotSQL, "LEFT JOIN suppliers")
}

func TestUserRepository_GetByID_NoSupplier(t *testing.T) {
	now := time.Now().UTC()
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return rowOf(int64(1), "Buyer", "b@example.com", "hash", true, false, "buyer",
				nil, nil, 0, now, now, now)
		},
	}
	u, err := NewUserRepository().GetByID(withTx(tx), 1)
	require.NoError(t, err)
	require.Nil(t, u.SupplierID)
	require.Empty(t, u.SupplierName)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	_, err := NewUserRepository().GetByID(withTx(tx), 42)
	require.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_address_key", Detail: "Key exists"}
			}}
		},
	}
	err := NewUserRepository().Create(withTx(tx), &user.User{EmailAddress: "a@b.com", Role: user.RoleBuyer})
	require.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestUserRepository_Create_LowercasesEmail(t *testing.T) {
	var gotArgs []any
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			gotArgs = args
			return rowOf(int64(11))
		},
	}
	supplierID := int64(1)
	u := &user.User{EmailAddress: "A@B.com", Role: user.RoleSupplier, SupplierID: &supplierID}
	require.NoError(t, NewUserRepository().Create(withTx(tx), u))
	require.Equal(t, int64(11), u.ID)
	require.Equal(t, "a@b.com", u.EmailAddress)
	require.Equal(t, "a@b.com", gotArgs[1])
	require.Equal(t, sql.NullInt64{Int64: 1, Valid: true}, gotArgs[6])
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	tx := &stubTx{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			require.True(t, strings.HasPrefix(strings.TrimSpace(sql), "UPDATE users"))
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
	err := NewUserRepository().Update(withTx(tx), &user.User{ID: 3, Role: user.RoleBuyer})
	require.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_RecordLogin(t *testing.T) {
	var gotArgs []any
	tx := &stubTx{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			gotArgs = args
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}
	require.NoError(t, NewUserRepository().RecordLogin(withTx(tx), 3, 4, true))
	require.Equal(t, []any{4, true, int64(3)}, gotArgs)
}
