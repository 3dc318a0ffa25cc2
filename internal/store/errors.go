package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Sentinel errors for driver failures; check with errors.Is.
var (
	ErrNotFound            = errors.New("store: record not found")
	ErrDuplicateKey        = errors.New("store: duplicate key")
	ErrForeignKeyViolation = errors.New("store: foreign key violation")
	ErrCheckViolation      = errors.New("store: check constraint violation")
)

// dbError pairs a sentinel with the original driver error.
type dbError struct {
	sentinel error
	cause    error
}

func (e *dbError) Error() string        { return fmt.Sprintf("%v (cause: %v)", e.sentinel, e.cause) }
func (e *dbError) Is(target error) bool { return e.sentinel == target }
func (e *dbError) Unwrap() error        { return e.cause }

// mapError translates driver errors from lib/pq and go-sqlite3 into the
// sentinels above. Unrecognized errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &dbError{sentinel: ErrNotFound, cause: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return &dbError{sentinel: ErrDuplicateKey, cause: err}
		case "23503": // foreign_key_violation
			return &dbError{sentinel: ErrForeignKeyViolation, cause: err}
		case "23514": // check_violation
			return &dbError{sentinel: ErrCheckViolation, cause: err}
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &dbError{sentinel: ErrDuplicateKey, cause: err}
		case sqlite3.ErrConstraintForeignKey:
			return &dbError{sentinel: ErrForeignKeyViolation, cause: err}
		case sqlite3.ErrConstraintCheck:
			return &dbError{sentinel: ErrCheckViolation, cause: err}
		}
	}
	return err
}
