package users

import (
	"embed"

	catalogpersistence "github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence"
	"github.com/iota-uz/catalog-api/modules/users/infrastructure/persistence"
	"github.com/iota-uz/catalog-api/modules/users/presentation/controllers"
	"github.com/iota-uz/catalog-api/modules/users/services"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

// Module depends on the catalog's suppliers table and must be loaded after it.
type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	app.RegisterServices(
		services.NewUserService(
			persistence.NewUserRepository(),
			catalogpersistence.NewSupplierRepository(),
			conf.BcryptCost,
			conf.FailedLoginLimit,
		),
	)
	app.RegisterControllers(
		controllers.NewUsersController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "users"
}
