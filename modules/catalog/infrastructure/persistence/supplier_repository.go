package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence/models"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/repo"
)

const (
	selectSupplierQuery = `
		SELECT id, supplier_id, name, description, duns_number, contact_information
		FROM suppliers`

	upsertSupplierQuery = `
		INSERT INTO suppliers (supplier_id, name, description, duns_number, contact_information)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (supplier_id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    duns_number = EXCLUDED.duns_number,
		    contact_information = EXCLUDED.contact_information
		RETURNING id`
)

type SupplierRepository struct{}

func NewSupplierRepository() supplier.Repository {
	return &SupplierRepository{}
}

func (r *SupplierRepository) GetBySupplierID(ctx context.Context, supplierID int64) (*supplier.Supplier, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row, err := scanSupplier(tx.QueryRow(ctx, selectSupplierQuery+` WHERE supplier_id = $1`, supplierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, supplier.ErrSupplierNotFound
		}
		return nil, errors.Wrapf(err, "get supplier %d", supplierID)
	}
	return toDomainSupplier(row)
}

func (r *SupplierRepository) List(ctx context.Context, params *supplier.FindParams) ([]*supplier.Supplier, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := buildSupplierFilters(params)
	query := selectSupplierQuery + where + ` ORDER BY name, supplier_id`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list suppliers")
	}
	defer rows.Close()

	var results []*supplier.Supplier
	for rows.Next() {
		row, err := scanSupplier(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan supplier")
		}
		s, err := toDomainSupplier(row)
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

func (r *SupplierRepository) Count(ctx context.Context, params *supplier.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildSupplierFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count suppliers")
	}
	return count, nil
}

func (r *SupplierRepository) Upsert(ctx context.Context, s *supplier.Supplier) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row, err := toDBSupplier(s)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, upsertSupplierQuery,
		row.SupplierID,
		row.Name,
		row.Description,
		row.DunsNumber,
		row.ContactInformation,
	).Scan(&s.ID)
}

func scanSupplier(row pgx.Row) (*models.Supplier, error) {
	var m models.Supplier
	if err := row.Scan(&m.ID, &m.SupplierID, &m.Name, &m.Description, &m.DunsNumber, &m.ContactInformation); err != nil {
		return nil, err
	}
	return &m, nil
}

func buildSupplierFilters(params *supplier.FindParams) (string, []interface{}) {
	if params == nil {
		return "", nil
	}
	prefix := strings.TrimSpace(params.NamePrefix)
	switch {
	case prefix == "":
		return "", nil
	case strings.EqualFold(prefix, "other"):
		return ` WHERE name !~* '^[a-z]'`, nil
	default:
		return ` WHERE name ILIKE $1`, []interface{}{escapeLike(prefix) + "%"}
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
