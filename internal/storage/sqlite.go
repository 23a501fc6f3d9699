// Package storage provides an ephemeral SQLite mirror of the wave field for
// ad-hoc SQL queries. The JSON field document is the source of truth; the
// database is rebuilt from it and can be deleted at any time.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matsen/wavefield/internal/field"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Mirror of the field document, one row per pattern
		CREATE TABLE IF NOT EXISTS patterns (
			id TEXT PRIMARY KEY,
			text TEXT,
			orientation_w REAL NOT NULL,
			orientation_x REAL NOT NULL,
			orientation_y REAL NOT NULL,
			orientation_z REAL NOT NULL,
			energy REAL NOT NULL,
			frequency REAL NOT NULL,
			phase REAL NOT NULL,
			expansion_depth INTEGER NOT NULL,
			absorbed_json TEXT,
			metadata_json TEXT,
			timestamp REAL NOT NULL,
			position INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_patterns_energy ON patterns(energy);
		CREATE INDEX IF NOT EXISTS idx_patterns_depth ON patterns(expansion_depth);

		-- Rebuild bookkeeping
		CREATE TABLE IF NOT EXISTS mirror_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromField clears the mirror and repopulates it from the in-memory
// field, preserving insertion order in the position column.
func (d *DB) RebuildFromField(f *field.Field) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM patterns"); err != nil {
		return 0, fmt.Errorf("clearing patterns table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO patterns (
			id, text,
			orientation_w, orientation_x, orientation_y, orientation_z,
			energy, frequency, phase,
			expansion_depth, absorbed_json, metadata_json, timestamp, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := f.IDs()
	for i, id := range ids {
		p, ok := f.Get(id)
		if !ok {
			continue
		}

		absorbedJSON, err := json.Marshal(p.AbsorbedPatterns)
		if err != nil {
			return 0, fmt.Errorf("encoding absorbed list for %s: %w", id, err)
		}
		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return 0, fmt.Errorf("encoding metadata for %s: %w", id, err)
		}

		if _, err := stmt.Exec(
			id, p.Text,
			p.Orientation.W, p.Orientation.X, p.Orientation.Y, p.Orientation.Z,
			p.Energy, p.Frequency, p.Phase,
			p.ExpansionDepth, string(absorbedJSON), string(metadataJSON),
			p.Timestamp, i,
		); err != nil {
			return 0, fmt.Errorf("inserting pattern %s: %w", id, err)
		}
	}

	if err := setMeta(tx, "rebuilt_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("updating rebuild time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(ids), nil
}

// setMeta upserts a mirror_meta key.
func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO mirror_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// RebuiltAt returns when the mirror was last rebuilt, or the zero time if it
// never was.
func (d *DB) RebuiltAt() (time.Time, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM mirror_meta WHERE key = 'rebuilt_at'").Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// CountPatterns returns the number of mirrored patterns.
func (d *DB) CountPatterns() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM patterns").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting patterns: %w", err)
	}
	return count, nil
}

// Record is a generic row returned by Query.
type Record map[string]any

// Query executes a SQL query against the mirror and returns generic records.
func (d *DB) Query(query string) ([]Record, error) {
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords converts SQL rows to records.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record)
		for i, col := range cols {
			record[col] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
