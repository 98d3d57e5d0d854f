package persistence

import (
	"context"
	"errors"

	pkgerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
	"github.com/iota-uz/catalog-api/modules/users/infrastructure/persistence/models"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

const (
	selectUserQuery = `
		SELECT u.id, u.name, u.email_address, u.password, u.active, u.locked, u.role,
		       u.supplier_id, s.name, u.failed_login_count, u.created_at, u.updated_at, u.password_changed_at
		FROM users u
		LEFT JOIN suppliers s ON s.supplier_id = u.supplier_id`

	insertUserQuery = `
		INSERT INTO users (
			name, email_address, password, active, locked, role, supplier_id,
			failed_login_count, created_at, updated_at, password_changed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	updateUserQuery = `
		UPDATE users
		SET name = $1,
		    email_address = $2,
		    password = $3,
		    active = $4,
		    locked = $5,
		    role = $6,
		    supplier_id = $7,
		    failed_login_count = $8,
		    updated_at = $9,
		    password_changed_at = $10
		WHERE id = $11`

	recordLoginQuery = `UPDATE users SET failed_login_count = $1, locked = $2 WHERE id = $3`

	emailUniqueConstraint = "users_email_address_key"
)

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.queryOne(ctx, selectUserQuery+` WHERE u.id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.queryOne(ctx, selectUserQuery+` WHERE lower(u.email_address) = $1`, user.NormalizeEmail(email))
}

func (r *UserRepository) GetByEmailForUpdate(ctx context.Context, email string) (*user.User, error) {
	return r.queryOne(ctx, selectUserQuery+` WHERE lower(u.email_address) = $1 FOR UPDATE OF u`, user.NormalizeEmail(email))
}

func (r *UserRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row, err := scanUser(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(err, "get user")
	}
	return toDomainUser(row), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row := toDBUser(u)
	err = tx.QueryRow(ctx, insertUserQuery,
		row.Name,
		row.EmailAddress,
		row.Password,
		row.Active,
		row.Locked,
		row.Role,
		row.SupplierID,
		row.FailedLoginCount,
		row.CreatedAt,
		row.UpdatedAt,
		row.PasswordChangedAt,
	).Scan(&u.ID)
	if err != nil {
		return mapUniqueEmail(err)
	}
	u.EmailAddress = row.EmailAddress
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	row := toDBUser(u)
	tag, err := tx.Exec(ctx, updateUserQuery,
		row.Name,
		row.EmailAddress,
		row.Password,
		row.Active,
		row.Locked,
		row.Role,
		row.SupplierID,
		row.FailedLoginCount,
		row.UpdatedAt,
		row.PasswordChangedAt,
		row.ID,
	)
	if err != nil {
		return mapUniqueEmail(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	u.EmailAddress = row.EmailAddress
	return nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id int64, failedLoginCount int, locked bool) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, recordLoginQuery, failedLoginCount, locked, id)
	if err != nil {
		return pkgerrors.Wrapf(err, "record login for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var m models.User
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.EmailAddress,
		&m.Password,
		&m.Active,
		&m.Locked,
		&m.Role,
		&m.SupplierID,
		&m.SupplierName,
		&m.FailedLoginCount,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.PasswordChangedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// mapUniqueEmail surfaces the case-insensitive e-mail index as ErrDuplicateEmail.
// Other database errors are returned unchanged so callers can map them.
func mapUniqueEmail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == emailUniqueConstraint {
		return pkgerrors.Wrap(user.ErrDuplicateEmail, pgErr.Detail)
	}
	return err
}
