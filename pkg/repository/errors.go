package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the domains distinguish.
const (
	CodeUniqueViolation = "23505"
	CodeCheckViolation  = "23514"
)

// MapError translates database errors to domain errors: sql.ErrNoRows
// becomes notFoundErr and a unique violation becomes duplicateErr. Other
// errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	if SQLState(err) == CodeUniqueViolation {
		return duplicateErr
	}
	return err
}

// SQLState returns the PostgreSQL error code carried by err, or "".
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
