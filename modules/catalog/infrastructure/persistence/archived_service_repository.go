package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/archivedservice"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence/models"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/repo"
)

const (
	selectArchivedServiceQuery = `
		SELECT a.id, a.service_id, a.supplier_id, sp.name, a.framework_id, f.name, f.expired,
		       a.status, a.data, a.created_at, a.updated_at, a.updated_by, a.updated_reason
		FROM archived_services a
		JOIN suppliers sp ON sp.supplier_id = a.supplier_id
		JOIN frameworks f ON f.id = a.framework_id`

	insertArchivedServiceQuery = `
		INSERT INTO archived_services (service_id, supplier_id, framework_id, status, data,
		                               created_at, updated_at, updated_by, updated_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
)

type ArchivedServiceRepository struct{}

func NewArchivedServiceRepository() archivedservice.Repository {
	return &ArchivedServiceRepository{}
}

func (r *ArchivedServiceRepository) GetByID(ctx context.Context, id int64) (*archivedservice.ArchivedService, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row, err := scanService(tx.QueryRow(ctx, selectArchivedServiceQuery+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, archivedservice.ErrArchivedServiceNotFound
		}
		return nil, errors.Wrapf(err, "get archived service %d", id)
	}
	return toDomainArchivedService(&models.ArchivedService{Service: *row})
}

func (r *ArchivedServiceRepository) List(ctx context.Context, params *archivedservice.FindParams) ([]*archivedservice.ArchivedService, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &archivedservice.FindParams{}
	}
	query := selectArchivedServiceQuery + ` WHERE a.service_id = $1 ORDER BY a.id ` +
		repo.FormatLimitOffset(params.Limit, params.Offset)

	rows, err := tx.Query(ctx, query, params.ServiceID)
	if err != nil {
		return nil, errors.Wrap(err, "list archived services")
	}
	defer rows.Close()

	var results []*archivedservice.ArchivedService
	for rows.Next() {
		row, err := scanService(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan archived service")
		}
		a, err := toDomainArchivedService(&models.ArchivedService{Service: *row})
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ArchivedServiceRepository) Count(ctx context.Context, params *archivedservice.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	if params == nil {
		params = &archivedservice.FindParams{}
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM archived_services WHERE service_id = $1`, params.ServiceID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count archived services")
	}
	return count, nil
}

func (r *ArchivedServiceRepository) Create(ctx context.Context, a *archivedservice.ArchivedService) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row, err := toDBArchivedService(a)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, insertArchivedServiceQuery,
		row.ServiceID,
		row.SupplierID,
		row.FrameworkID,
		row.Status,
		row.Data,
		row.CreatedAt,
		row.UpdatedAt,
		row.UpdatedBy,
		row.UpdatedReason,
	).Scan(&a.ID)
}
