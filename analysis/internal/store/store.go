// Package store provides the SQLite persistence layer for analysis data:
// publisher profiles, anchor portfolios and the audit event log.
package store

import (
	"database/sql"

	"github.com/mittpunkt/blcwrtr/dbopen"
)

// Store is the analysis database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the analysis SQLite database at path, applies the
// standard pragmas and the analysis schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
