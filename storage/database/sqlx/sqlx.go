// Package sqlxrepos implements the catalog, assignment and synonym stores with sqlx.
// Queries are written with `?` bind vars and rebound for the engine.
package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// NewDB wraps an open database for the given engine (postgres or sqlite3).
func NewDB(db *sql.DB, engine string) *sqlx.DB {
	return sqlx.NewDb(db, engine)
}
