package db

import (
	"database/sql"
)

// Database is a connection lifecycle around a *sql.DB.
// Connect is expected to leave the schema migrated.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
	// SchemaVersion is the highest applied migration
	SchemaVersion() (int, error)
	// Path is where the data lives, for logs and operator output
	Path() string
}
