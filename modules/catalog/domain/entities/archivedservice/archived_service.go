package archivedservice

import (
	"context"
	"errors"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
)

var ErrArchivedServiceNotFound = errors.New("archived service not found")

// ArchivedService is an immutable copy of a service taken right before it was mutated.
type ArchivedService struct {
	ID      int64
	Service service.Service
}

// FromService snapshots s. ID stays zero until the row is inserted.
func FromService(s *service.Service) *ArchivedService {
	return &ArchivedService{Service: *s.Clone()}
}

type FindParams struct {
	ServiceID string
	Limit     int
	Offset    int
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*ArchivedService, error)
	List(ctx context.Context, params *FindParams) ([]*ArchivedService, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, a *ArchivedService) error
}
