// Package catalog implements the generic keyed store behind the mirror: one
// sqlite table per entity schema, CRUD keyed by surrogate id, natural-key
// upsert for the sync engine, and a whitelist-bound query builder for search.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/galaxykit/holocron/internal/schema"
	_ "modernc.org/sqlite"
)

// Store wraps the sqlite database holding every entity table.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens the database at dbPath, creating it and the tables for the
// given schemas if necessary.
func Open(dbPath string, schemas []schema.Schema) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: sqlite is single-writer, and a single conn keeps
	// mutations on a record serialized without an external lock.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	for _, sc := range schemas {
		if _, err := conn.Exec(createTableSQL(sc)); err != nil {
			conn.Close()
			return nil, fmt.Errorf("create table %s: %w", sc.Table(), err)
		}
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Ping checks the database connection is alive.
func (s *Store) Ping() error {
	return s.conn.Ping()
}

// Close checkpoints the WAL and closes the database connection.
func (s *Store) Close() error {
	s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.conn.Close()
}

// Begin starts a transaction. Used by the sync engine to apply a full
// reconciliation batch atomically.
func (s *Store) Begin() (*sql.Tx, error) {
	return s.conn.Begin()
}

// Catalog binds the store to one entity schema.
func (s *Store) Catalog(sc schema.Schema) *Catalog {
	return &Catalog{store: s, sc: sc}
}

// createTableSQL derives the DDL for one entity table. Every identifier comes
// from the schema descriptor, never from caller input. AUTOINCREMENT keeps
// surrogate ids from being reused after deletion; the UNIQUE natural key
// column enforces one record per natural-key value.
func createTableSQL(sc schema.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", sc.Table())
	b.WriteString("    id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, f := range sc.Fields {
		col := "TEXT"
		if f.Type == schema.TypeNumber {
			col = "INTEGER"
		}
		fmt.Fprintf(&b, ",\n    %s %s", f.Name, col)
		if f.Name == sc.NaturalKey {
			b.WriteString(" UNIQUE")
		}
	}
	for _, r := range sc.Relations {
		fmt.Fprintf(&b, ",\n    %s TEXT", r)
	}
	b.WriteString(",\n    source_url TEXT")
	b.WriteString(",\n    created TEXT")
	b.WriteString(",\n    edited TEXT")
	b.WriteString("\n)")
	return b.String()
}
