package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/framework"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/constants"
)

func withTx(tx *stubTx) context.Context {
	return context.WithValue(context.Background(), constants.TxKey, tx)
}

func serviceRow(id int64, serviceID string, status string, data string, now time.Time) []any {
	return []any{id, serviceID, int64(1), "Supplier 1", int64(2), "G-Cloud 6", false,
		status, []byte(data), now, now, "importer", "import"}
}

func TestServiceRepository_GetByServiceID_MapsRow(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "FROM services s")
			require.NotContains(t, sql, "FOR UPDATE")
			require.Equal(t, "S1", args[0])
			return rowOf(serviceRow(5, "S1", "published", `{"serviceName":"Hosting","minPrice":10}`, now)...)
		},
	}

	s, err := NewServiceRepository().GetByServiceID(withTx(tx), "S1")
	require.NoError(t, err)
	require.Equal(t, int64(5), s.ID)
	require.Equal(t, "Supplier 1", s.SupplierName)
	require.Equal(t, "G-Cloud 6", s.FrameworkName)
	require.Equal(t, service.StatusPublished, s.Status)
	require.Equal(t, "Hosting", s.Data["serviceName"])
	require.Equal(t, json.Number("10"), s.Data["minPrice"])
	require.Equal(t, now, s.UpdatedAt)
}

func TestServiceRepository_GetForUpdate_LocksRow(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "FOR UPDATE OF s")
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}

	_, err := NewServiceRepository().GetByServiceIDForUpdate(withTx(tx), "missing")
	require.ErrorIs(t, err, service.ErrServiceNotFound)
}

func TestServiceRepository_List_BuildsFilters(t *testing.T) {
	supplierID := int64(9)
	now := time.Now().UTC()
	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.NotContains(t, sql, "f.expired = FALSE")
			require.Contains(t, sql, "s.status = ANY($1)")
			require.Contains(t, sql, "s.supplier_id = $2")
			require.Contains(t, sql, "ORDER BY s.framework_id, s.data->>'lot', s.data->>'serviceName'")
			require.Contains(t, sql, "LIMIT 10 OFFSET 20")
			require.Equal(t, []string{"published", "enabled"}, args[0])
			require.Equal(t, supplierID, args[1])
			return &stubRows{data: [][]any{
				serviceRow(1, "S1", "published", `{}`, now),
				serviceRow(2, "S2", "enabled", `{"lot":"SaaS"}`, now),
			}}, nil
		},
	}

	result, err := NewServiceRepository().List(withTx(tx), &service.FindParams{
		Statuses:       []service.Status{service.StatusPublished, service.StatusEnabled},
		SupplierID:     &supplierID,
		IncludeExpired: true,
		Limit:          10,
		Offset:         20,
	})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, "S2", result[1].ServiceID)
	require.Equal(t, "SaaS", result[1].Data["lot"])
}

func TestServiceRepository_Count_HidesExpiredByDefault(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "WHERE f.expired = FALSE")
			require.Empty(t, args)
			return rowOf(int64(3))
		},
	}

	count, err := NewServiceRepository().Count(withTx(tx), nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestServiceRepository_Create_ReturnsID(t *testing.T) {
	now := time.Now().UTC()
	s := service.New("S1", 1, 2, service.StatusPublished, service.Document{"serviceName": "Hosting"},
		service.Updater{By: "importer", Reason: "import"}, now)

	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO services")
			require.Equal(t, "S1", args[0])
			require.Equal(t, int64(1), args[1])
			require.Equal(t, int64(2), args[2])
			require.Equal(t, "published", args[3])
			require.JSONEq(t, `{"serviceName":"Hosting"}`, string(args[4].([]byte)))
			require.Equal(t, args[5], args[6])
			return rowOf(int64(77))
		},
	}

	require.NoError(t, NewServiceRepository().Create(withTx(tx), s))
	require.Equal(t, int64(77), s.ID)
}

func TestServiceRepository_Update_NotFoundWhenNoRows(t *testing.T) {
	s := &service.Service{ServiceID: "S1", Status: service.StatusDisabled}
	calls := 0
	tx := &stubTx{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			calls++
			require.Contains(t, sql, "UPDATE services")
			require.Equal(t, "disabled", args[0])
			require.Equal(t, "S1", args[5])
			if calls == 1 {
				return pgconn.NewCommandTag("UPDATE 1"), nil
			}
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}

	require.NoError(t, NewServiceRepository().Update(withTx(tx), s))
	require.ErrorIs(t, NewServiceRepository().Update(withTx(tx), s), service.ErrServiceNotFound)
}

func TestServiceRepository_NoPool(t *testing.T) {
	_, err := NewServiceRepository().GetByServiceID(context.Background(), "S1")
	require.ErrorIs(t, err, composables.ErrNoPool)
}

func TestArchivedServiceRepository_CreateAndList(t *testing.T) {
	now := time.Now().UTC()
	live := service.New("S1", 1, 2, service.StatusPublished, service.Document{"serviceName": "Hosting"},
		service.Updater{By: "importer", Reason: "import"}, now)
	live.ID = 42
	snap := archivedservice.FromService(live)

	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO archived_services")
			require.Equal(t, "S1", args[0])
			require.Equal(t, "published", args[3])
			return rowOf(int64(3))
		},
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "FROM archived_services a")
			require.Contains(t, sql, "WHERE a.service_id = $1 ORDER BY a.id")
			require.Equal(t, "S1", args[0])
			return &stubRows{data: [][]any{serviceRow(3, "S1", "published", `{"serviceName":"Hosting"}`, now)}}, nil
		},
	}

	repo := NewArchivedServiceRepository()
	require.NoError(t, repo.Create(withTx(tx), snap))
	require.Equal(t, int64(3), snap.ID)

	items, err := repo.List(withTx(tx), &archivedservice.FindParams{ServiceID: "S1", Limit: 100})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].ID)
	require.Zero(t, items[0].Service.ID)
	require.Equal(t, "S1", items[0].Service.ServiceID)
}

func TestArchivedServiceRepository_GetByID_NotFound(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Equal(t, int64(99), args[0])
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	_, err := NewArchivedServiceRepository().GetByID(withTx(tx), 99)
	require.ErrorIs(t, err, archivedservice.ErrArchivedServiceNotFound)
}

func TestSupplierRepository_GetBySupplierID(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "FROM suppliers")
			require.Equal(t, int64(1), args[0])
			return rowOf(int64(10), int64(1), "Supplier 1", "desc", "123456789",
				[]byte(`[{"contactName":"Jo","email":"jo@example.com"}]`))
		},
	}

	s, err := NewSupplierRepository().GetBySupplierID(withTx(tx), 1)
	require.NoError(t, err)
	require.Equal(t, "Supplier 1", s.Name)
	require.Len(t, s.Contacts, 1)
	require.Equal(t, "jo@example.com", s.Contacts[0].Email)
}

func TestSupplierRepository_GetBySupplierID_NotFound(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	_, err := NewSupplierRepository().GetBySupplierID(withTx(tx), 999)
	require.ErrorIs(t, err, supplier.ErrSupplierNotFound)
}

func TestSupplierRepository_ListPrefixFilters(t *testing.T) {
	var seen []string
	var seenArgs [][]any
	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			seen = append(seen, sql)
			seenArgs = append(seenArgs, args)
			return &stubRows{}, nil
		},
	}
	repo := NewSupplierRepository()

	_, err := repo.List(withTx(tx), &supplier.FindParams{NamePrefix: "a_b"})
	require.NoError(t, err)
	_, err = repo.List(withTx(tx), &supplier.FindParams{NamePrefix: "other"})
	require.NoError(t, err)

	require.Contains(t, seen[0], "name ILIKE $1")
	require.Equal(t, `a\_b%`, seenArgs[0][0])
	require.Contains(t, seen[1], "name !~* '^[a-z]'")
	require.Empty(t, seenArgs[1])
}

func TestFrameworkRepository_GetByName(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			if args[0] == "G-Cloud 6" {
				return rowOf(int64(2), "G-Cloud 6", false)
			}
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	repo := NewFrameworkRepository()

	f, err := repo.GetByName(withTx(tx), "G-Cloud 6")
	require.NoError(t, err)
	require.Equal(t, int64(2), f.ID)
	require.False(t, f.Expired)

	_, err = repo.GetByName(withTx(tx), "G-Cloud 99")
	require.ErrorIs(t, err, framework.ErrFrameworkNotFound)
}
