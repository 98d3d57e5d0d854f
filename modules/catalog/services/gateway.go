package services

import (
	"context"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

// PersistenceGateway owns the write transaction for live services and their archive.
type PersistenceGateway struct {
	services service.Repository
	archive  archivedservice.Repository
}

func NewPersistenceGateway(services service.Repository, archive archivedservice.Repository) *PersistenceGateway {
	return &PersistenceGateway{services: services, archive: archive}
}

// InTx runs fn in a fresh transaction. Database failures, including those raised by commit,
// come back as service errors.
func (g *PersistenceGateway) InTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return mapPgError(composables.InTx(ctx, fn))
}

// LoadForUpdate row-locks the live service for the rest of the transaction.
func (g *PersistenceGateway) LoadForUpdate(txCtx context.Context, serviceID string) (*service.Service, error) {
	return g.services.GetByServiceIDForUpdate(txCtx, serviceID)
}

// CommitUpdate writes the snapshot and the mutated live record inside the caller's transaction.
func (g *PersistenceGateway) CommitUpdate(txCtx context.Context, snapshot *archivedservice.ArchivedService, live *service.Service) error {
	if err := g.archive.Create(txCtx, snapshot); err != nil {
		return err
	}
	return g.services.Update(txCtx, live)
}

func (g *PersistenceGateway) CommitCreate(txCtx context.Context, live *service.Service) error {
	return g.services.Create(txCtx, live)
}
