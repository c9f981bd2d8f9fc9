// Package database provides PostgreSQL repositories for the engagement
// service. Each entity gets a repository struct over *DB; interfaces for
// the consumers live in repositories.go so engines can be tested against
// in-memory fakes.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// DB wraps sql.DB with service pool defaults.
type DB struct {
	*sql.DB
}

// New opens a PostgreSQL connection pool from a DATABASE_URL style DSN.
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
