package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence/models"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/repo"
)

const (
	selectServiceQuery = `
		SELECT s.id, s.service_id, s.supplier_id, sp.name, s.framework_id, f.name, f.expired,
		       s.status, s.data, s.created_at, s.updated_at, s.updated_by, s.updated_reason
		FROM services s
		JOIN suppliers sp ON sp.supplier_id = s.supplier_id
		JOIN frameworks f ON f.id = s.framework_id`

	countServiceQuery = `
		SELECT COUNT(*)
		FROM services s
		JOIN frameworks f ON f.id = s.framework_id`

	serviceExistsQuery = `SELECT EXISTS(SELECT 1 FROM services WHERE service_id = $1)`

	insertServiceQuery = `
		INSERT INTO services (service_id, supplier_id, framework_id, status, data,
		                      created_at, updated_at, updated_by, updated_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	updateServiceQuery = `
		UPDATE services
		SET status = $1, data = $2, updated_at = $3, updated_by = $4, updated_reason = $5
		WHERE service_id = $6`

	serviceListOrder = ` ORDER BY s.framework_id, s.data->>'lot', s.data->>'serviceName', s.id`
)

type ServiceRepository struct{}

func NewServiceRepository() service.Repository {
	return &ServiceRepository{}
}

func (r *ServiceRepository) GetByServiceID(ctx context.Context, serviceID string) (*service.Service, error) {
	return r.getOne(ctx, selectServiceQuery+` WHERE s.service_id = $1`, serviceID)
}

func (r *ServiceRepository) GetByServiceIDForUpdate(ctx context.Context, serviceID string) (*service.Service, error) {
	return r.getOne(ctx, selectServiceQuery+` WHERE s.service_id = $1 FOR UPDATE OF s`, serviceID)
}

func (r *ServiceRepository) getOne(ctx context.Context, query string, serviceID string) (*service.Service, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row, err := scanService(tx.QueryRow(ctx, query, serviceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrServiceNotFound
		}
		return nil, errors.Wrapf(err, "get service %s", serviceID)
	}
	return toDomainService(row)
}

func (r *ServiceRepository) Exists(ctx context.Context, serviceID string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, serviceExistsQuery, serviceID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check service existence")
	}
	return exists, nil
}

func (r *ServiceRepository) List(ctx context.Context, params *service.FindParams) ([]*service.Service, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := buildServiceFilters(params)
	query := selectServiceQuery + where + serviceListOrder
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list services")
	}
	defer rows.Close()

	var results []*service.Service
	for rows.Next() {
		row, err := scanService(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan service")
		}
		s, err := toDomainService(row)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ServiceRepository) Count(ctx context.Context, params *service.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildServiceFilters(params)

	var count int64
	if err := tx.QueryRow(ctx, countServiceQuery+where, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count services")
	}
	return count, nil
}

func (r *ServiceRepository) Create(ctx context.Context, s *service.Service) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row, err := toDBService(s)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, insertServiceQuery,
		row.ServiceID,
		row.SupplierID,
		row.FrameworkID,
		row.Status,
		row.Data,
		row.CreatedAt,
		row.UpdatedAt,
		row.UpdatedBy,
		row.UpdatedReason,
	).Scan(&s.ID)
}

func (r *ServiceRepository) Update(ctx context.Context, s *service.Service) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row, err := toDBService(s)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, updateServiceQuery,
		row.Status,
		row.Data,
		row.UpdatedAt,
		row.UpdatedBy,
		row.UpdatedReason,
		row.ServiceID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return service.ErrServiceNotFound
	}
	return nil
}

func scanService(row pgx.Row) (*models.Service, error) {
	var m models.Service
	if err := row.Scan(
		&m.ID,
		&m.ServiceID,
		&m.SupplierID,
		&m.SupplierName,
		&m.FrameworkID,
		&m.FrameworkName,
		&m.FrameworkExpired,
		&m.Status,
		&m.Data,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.UpdatedBy,
		&m.UpdatedReason,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func buildServiceFilters(params *service.FindParams) (string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		params = &service.FindParams{}
	}
	if !params.IncludeExpired {
		where = append(where, "f.expired = FALSE")
	}
	if len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, st := range params.Statuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("s.status = ANY($%d)", len(args)))
	}
	if params.SupplierID != nil {
		args = append(args, *params.SupplierID)
		where = append(where, fmt.Sprintf("s.supplier_id = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}
