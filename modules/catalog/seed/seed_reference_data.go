package seed

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/framework"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

type FrameworkFixture struct {
	Name    string `yaml:"name"`
	Expired bool   `yaml:"expired"`
}

type SupplierFixture struct {
	SupplierID  int64              `yaml:"supplierId"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	DunsNumber  string             `yaml:"dunsNumber"`
	Contacts    []supplier.Contact `yaml:"contactInformation"`
}

// Fixtures is the reference data the catalog needs before services can be imported.
type Fixtures struct {
	Frameworks []FrameworkFixture `yaml:"frameworks"`
	Suppliers  []SupplierFixture  `yaml:"suppliers"`
}

func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed file %s", path)
	}
	return ParseFixtures(raw)
}

func ParseFixtures(raw []byte) (*Fixtures, error) {
	var fixtures Fixtures
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, errors.Wrap(err, "parse seed fixtures")
	}
	for i, f := range fixtures.Frameworks {
		if f.Name == "" {
			return nil, errors.Errorf("frameworks[%d]: name is required", i)
		}
	}
	for i, s := range fixtures.Suppliers {
		if s.SupplierID <= 0 {
			return nil, errors.Errorf("suppliers[%d]: supplierId must be positive", i)
		}
		if s.Name == "" {
			return nil, errors.Errorf("suppliers[%d]: name is required", i)
		}
	}
	return &fixtures, nil
}

// Apply upserts the fixtures through the given repositories.
func Apply(ctx context.Context, fixtures *Fixtures, frameworks framework.Repository, suppliers supplier.Repository) error {
	for _, f := range fixtures.Frameworks {
		if err := frameworks.Upsert(ctx, &framework.Framework{Name: f.Name, Expired: f.Expired}); err != nil {
			return errors.Wrapf(err, "upsert framework %s", f.Name)
		}
	}
	for _, s := range fixtures.Suppliers {
		sp := &supplier.Supplier{
			SupplierID:  s.SupplierID,
			Name:        s.Name,
			Description: s.Description,
			DunsNumber:  s.DunsNumber,
			Contacts:    s.Contacts,
		}
		if err := suppliers.Upsert(ctx, sp); err != nil {
			return errors.Wrapf(err, "upsert supplier %d", s.SupplierID)
		}
	}
	return nil
}

// ReferenceData returns a seed func loading path into the database in one transaction.
func ReferenceData(path string) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		fixtures, err := LoadFixtures(path)
		if err != nil {
			return err
		}
		logger := app.Logger()
		logger.Infof("Seeding %d frameworks and %d suppliers from %s", len(fixtures.Frameworks), len(fixtures.Suppliers), path)
		return composables.InTx(ctx, func(txCtx context.Context) error {
			return Apply(txCtx, fixtures, persistence.NewFrameworkRepository(), persistence.NewSupplierRepository())
		})
	}
}
