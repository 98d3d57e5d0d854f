package catalog

import (
	"embed"

	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/search"
	"github.com/iota-uz/catalog-api/modules/catalog/presentation/controllers"
	"github.com/iota-uz/catalog-api/modules/catalog/seed"
	"github.com/iota-uz/catalog-api/modules/catalog/services"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	app.Seeder().Register(seed.ReferenceData(conf.SeedFile))

	indexer, err := search.NewFromConfiguration(conf)
	if err != nil {
		return err
	}

	serviceRepo := persistence.NewServiceRepository()
	supplierRepo := persistence.NewSupplierRepository()

	app.RegisterServices(
		services.NewCatalogService(
			serviceRepo,
			persistence.NewArchivedServiceRepository(),
			supplierRepo,
			persistence.NewFrameworkRepository(),
			indexer,
			conf.PageSize,
		),
		services.NewSupplierService(supplierRepo, conf.PageSize),
	)

	app.RegisterControllers(
		controllers.NewIndexController(app),
		controllers.NewServicesController(app),
		controllers.NewArchivedServicesController(app),
		controllers.NewSuppliersController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
