package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/catalog-api/pkg/serrors"
)

// mapPgError turns constraint violations into 400 conflicts carrying the database detail.
// Errors that already are service errors pass through untouched.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := serrors.As(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return serrors.Internal("CATALOG_INTERNAL", err)
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		recordWriteConflict("unique")
		return serrors.Conflict(http.StatusBadRequest, "CATALOG_DUPLICATE", constraintMessage(pgErr), err)
	case "23503": // foreign_key_violation
		recordWriteConflict("foreign_key")
		return serrors.Conflict(http.StatusBadRequest, "CATALOG_REFERENCE_NOT_FOUND", constraintMessage(pgErr), err)
	case "23514": // check_violation
		recordWriteConflict("check")
		return serrors.Conflict(http.StatusBadRequest, "CATALOG_CHECK_VIOLATION", constraintMessage(pgErr), err)
	case "23502": // not_null_violation
		recordWriteConflict("not_null")
		return serrors.Conflict(http.StatusBadRequest, "CATALOG_NOT_NULL_VIOLATION", constraintMessage(pgErr), err)
	default:
		return serrors.Internal("CATALOG_INTERNAL", fmt.Errorf("database error (%s): %w", pgErr.Code, err))
	}
}

func constraintMessage(pgErr *pgconn.PgError) string {
	if pgErr.Detail != "" {
		return pgErr.Detail
	}
	if pgErr.ConstraintName != "" {
		return fmt.Sprintf("%s (%s)", pgErr.Message, pgErr.ConstraintName)
	}
	return pgErr.Message
}
