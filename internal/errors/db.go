package errors

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError converts context, no-rows and Postgres errors from the catalog
// repository into AppErrors. Anything else is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	code, msg := classifyPg(pgErr.Code)
	mapped := Wrap(pgErr, code, msg)
	if code == ErrCodeConflict {
		mapped.Field = pgErr.ColumnName
	}
	return mapped
}

func classifyPg(sqlState string) (ErrorCode, string) {
	switch {
	case sqlState == pgerrcode.UniqueViolation:
		return ErrCodeConflict, "This value already exists. Please choose a different one."
	case sqlState == pgerrcode.UndefinedTable:
		return ErrCodeInternal, "Catalog tables are missing. Run the migrate command."
	case pgerrcode.IsConnectionException(sqlState),
		pgerrcode.IsInsufficientResources(sqlState),
		pgerrcode.IsOperatorIntervention(sqlState):
		return ErrCodeInternal, "The catalog database is unavailable. Please try again."
	default:
		return ErrCodeInternal, "A database error occurred. Please try again."
	}
}
