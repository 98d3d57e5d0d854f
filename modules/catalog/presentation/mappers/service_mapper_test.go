package mappers

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
)

func TestServiceToJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)
	s := &service.Service{
		ServiceID:     "S1",
		SupplierID:    1,
		SupplierName:  "Supplier 1",
		FrameworkName: "G-Cloud 6",
		Status:        service.StatusPublished,
		Data:          service.Document{"serviceName": "Hosting"},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	got := ServiceToJSON(s, "http://localhost/services/S1")
	require.Equal(t, "S1", got["id"])
	require.Equal(t, int64(1), got["supplierId"])
	require.Equal(t, "Supplier 1", got["supplierName"])
	require.Equal(t, "G-Cloud 6", got["frameworkName"])
	require.Equal(t, "published", got["status"])
	require.Equal(t, "Hosting", got["serviceName"])
	require.Equal(t, "2024-05-01T12:00:00.123456Z", got["createdAt"])
	require.Equal(t, map[string]string{"self": "http://localhost/services/S1"}, got["links"])
	require.NotContains(t, s.Data, "links")
}

func TestSupplierToJSON_EmptyContacts(t *testing.T) {
	got := SupplierToJSON(&supplier.Supplier{SupplierID: 3, Name: "Acme"}, "http://localhost/suppliers/3")
	require.Equal(t, int64(3), got.ID)
	require.NotNil(t, got.ContactInformation)
}

func TestPaginationLinks(t *testing.T) {
	base, err := url.Parse("http://localhost/services?status=published&page=2")
	require.NoError(t, err)

	links := PaginationLinks(base, 2, true, true)
	require.Equal(t, "http://localhost/services?page=1&status=published", links["prev"])
	require.Equal(t, "http://localhost/services?page=3&status=published", links["next"])

	require.Empty(t, PaginationLinks(base, 1, false, false))
}
