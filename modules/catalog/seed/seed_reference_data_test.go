package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/modules/catalog/testhelpers"
)

const fixturesYAML = `
frameworks:
  - name: G-Cloud 6
  - name: G-Cloud 4
    expired: true
suppliers:
  - supplierId: 1
    name: Supplier 1
    dunsNumber: "123456789"
    contactInformation:
      - contactName: Jo Bloggs
        email: jo@example.com
`

func TestParseFixtures(t *testing.T) {
	fixtures, err := ParseFixtures([]byte(fixturesYAML))
	require.NoError(t, err)
	require.Len(t, fixtures.Frameworks, 2)
	require.True(t, fixtures.Frameworks[1].Expired)
	require.Equal(t, "jo@example.com", fixtures.Suppliers[0].Contacts[0].Email)

	_, err = ParseFixtures([]byte("suppliers:\n  - name: nameless id\n"))
	require.ErrorContains(t, err, "supplierId must be positive")

	_, err = ParseFixtures([]byte("frameworks: [{expired: true}]"))
	require.ErrorContains(t, err, "name is required")
}

func TestApply_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixturesYAML), 0o644))
	fixtures, err := LoadFixtures(path)
	require.NoError(t, err)

	store := testhelpers.NewStore()
	frameworks := testhelpers.NewFrameworkRepository(store)
	suppliers := testhelpers.NewSupplierRepository(store)
	ctx := store.Context(t)

	require.NoError(t, Apply(ctx, fixtures, frameworks, suppliers))
	require.NoError(t, Apply(ctx, fixtures, frameworks, suppliers))

	all, err := frameworks.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	sp, err := suppliers.GetBySupplierID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Supplier 1", sp.Name)
	require.Len(t, sp.Contacts, 1)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
