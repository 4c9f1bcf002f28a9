// Package database is the table registry: create, drop, and fetch tables
// by name.
package database

import (
	"errors"

	"github.com/nainya/columnstore/internal/logger"
	"github.com/nainya/columnstore/pkg/table"
)

var (
	// ErrDuplicateTable indicates table creation under an existing name
	ErrDuplicateTable = errors.New("database: table already exists")

	// ErrTableNotFound indicates a lookup or drop of an unknown table
	ErrTableNotFound = errors.New("database: table not found")
)

// Database holds the tables of one store instance.
type Database struct {
	tables map[string]*table.Table
	cfg    table.Config
	log    *logger.Logger
}

// New creates an empty database whose tables share the given configuration.
func New(cfg table.Config) *Database {
	return &Database{
		tables: make(map[string]*table.Table),
		cfg:    cfg,
		log:    logger.GetGlobalLogger().DbLogger("registry"),
	}
}

// Open prepares the database for use. The store is in-memory, so this is a
// lifecycle no-op kept for interface stability.
func (db *Database) Open(path string) error {
	return nil
}

// Close releases the database. Lifecycle no-op, see Open.
func (db *Database) Close() error {
	return nil
}

// CreateTable creates a table with numColumns integer data columns and the
// primary key at the given column.
func (db *Database) CreateTable(name string, numColumns, primaryKey int) (*table.Table, error) {
	if _, ok := db.tables[name]; ok {
		db.log.Warn("table already exists").Str("table", name).Send()
		return nil, ErrDuplicateTable
	}

	t, err := table.New(name, numColumns, primaryKey, db.cfg)
	if err != nil {
		return nil, err
	}
	db.tables[name] = t

	db.log.Info("table created").
		Str("table", name).
		Int("columns", numColumns).
		Int("primary_key", primaryKey).
		Send()
	return t, nil
}

// DropTable deletes the named table.
func (db *Database) DropTable(name string) error {
	if _, ok := db.tables[name]; !ok {
		return ErrTableNotFound
	}
	delete(db.tables, name)
	db.log.Info("table dropped").Str("table", name).Send()
	return nil
}

// GetTable returns the named table.
func (db *Database) GetTable(name string) (*table.Table, error) {
	t, ok := db.tables[name]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Tables returns the number of registered tables.
func (db *Database) Tables() int {
	return len(db.tables)
}
