package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/framework"
	"github.com/iota-uz/catalog-api/modules/catalog/infrastructure/persistence/models"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

type FrameworkRepository struct{}

func NewFrameworkRepository() framework.Repository {
	return &FrameworkRepository{}
}

func (r *FrameworkRepository) GetByName(ctx context.Context, name string) (*framework.Framework, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var m models.Framework
	if err := tx.QueryRow(ctx, `SELECT id, name, expired FROM frameworks WHERE name = $1`, name).
		Scan(&m.ID, &m.Name, &m.Expired); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, framework.ErrFrameworkNotFound
		}
		return nil, errors.Wrapf(err, "get framework %q", name)
	}
	return toDomainFramework(&m), nil
}

func (r *FrameworkRepository) List(ctx context.Context) ([]*framework.Framework, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id, name, expired FROM frameworks ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list frameworks")
	}
	defer rows.Close()

	var results []*framework.Framework
	for rows.Next() {
		var m models.Framework
		if err := rows.Scan(&m.ID, &m.Name, &m.Expired); err != nil {
			return nil, errors.Wrap(err, "scan framework")
		}
		results = append(results, toDomainFramework(&m))
	}
	return results, rows.Err()
}

func (r *FrameworkRepository) Upsert(ctx context.Context, f *framework.Framework) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO frameworks (name, expired)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET expired = EXCLUDED.expired
		RETURNING id`,
		f.Name, f.Expired,
	).Scan(&f.ID)
}
