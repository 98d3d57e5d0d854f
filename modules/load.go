package modules

import (
	"github.com/iota-uz/catalog-api/modules/catalog"
	"github.com/iota-uz/catalog-api/modules/users"
	"github.com/iota-uz/catalog-api/pkg/application"
)

// BuiltInModules are registered in order; users references catalog suppliers.
var BuiltInModules = []application.Module{
	catalog.NewModule(),
	users.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
