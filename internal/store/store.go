// internal/store/store.go
//
// SQL persistence for users, companies, jobs and applications.
//
// Notes:
//   - All statements use positional $N placeholders (PostgreSQL and SQLite).
//   - Partial updates go through sqlutil.PartialUpdate with a per-entity
//     field translation table.
//   - Driver errors are mapped to sentinels (errors.go) and then to
//     apperr kinds at each method boundary, so handlers only see
//     *apperr.Error for client mistakes.

package store

import (
	"database/sql"
)

// Store is the repository over a database handle.
type Store struct {
	db   *sql.DB
	cost int // bcrypt work factor
}

// New returns a Store over db hashing passwords with bcryptCost.
func New(db *sql.DB, bcryptCost int) *Store {
	return &Store{db: db, cost: bcryptCost}
}

// Ping checks database connectivity.
func (s *Store) Ping() error { return s.db.Ping() }

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
