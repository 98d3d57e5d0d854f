package services

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/modules/catalog/testhelpers"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

func TestSupplierService_ListByPrefix(t *testing.T) {
	store := testhelpers.NewStore()
	store.AddSupplier(1, "Acme")
	store.AddSupplier(2, "alpha")
	store.AddSupplier(3, "Beta")
	store.AddSupplier(4, "3D Labs")
	svc := NewSupplierService(testhelpers.NewSupplierRepository(store), 10)
	ctx := store.Context(t)

	page, err := svc.List(ctx, "a", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(2), page.Total)

	page, err = svc.List(ctx, "other", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "3D Labs", page.Items[0].Name)

	page, err = svc.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	_, err = svc.List(ctx, "", 2)
	requireServiceError(t, err, http.StatusNotFound, serrors.KindNotFound)

	_, err = svc.List(ctx, "", math.MaxInt)
	svcErr := requireServiceError(t, err, http.StatusNotFound, serrors.KindNotFound)
	require.Equal(t, "PAGE_NOT_FOUND", svcErr.Code)
}

func TestSupplierService_GetAndUpsert(t *testing.T) {
	store := testhelpers.NewStore()
	svc := NewSupplierService(testhelpers.NewSupplierRepository(store), 10)
	ctx := store.Context(t)

	_, err := svc.Get(ctx, 1)
	requireServiceError(t, err, http.StatusNotFound, serrors.KindNotFound)

	require.NoError(t, svc.Upsert(ctx, &supplier.Supplier{SupplierID: 1, Name: "Acme"}))
	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Name)

	err = svc.Upsert(ctx, &supplier.Supplier{SupplierID: 0, Name: "Nope"})
	requireServiceError(t, err, http.StatusBadRequest, serrors.KindValidation)
}
