package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // The pure Go SQLite driver
)

// Service manages all interactions with the club database. SQLite allows
// only one writer at a time, so every write goes through WriteTx, which
// serialises writers behind a mutex and wraps them in a transaction.
type Service struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewService opens the club database and verifies the connection.
func NewService(dbPath string) (*Service, error) {
	// `?_foreign_keys=on` is crucial for data integrity.
	db, err := sql.Open("sqlite", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", dbPath, err)
	}

	return &Service{db: db}, nil
}

// DB provides a direct connection for read-only queries.
func (s *Service) DB() *sql.DB {
	return s.db
}

// WriteTx executes a write operation (INSERT, UPDATE, DELETE) within a
// transaction, protected by a mutex to ensure serial access.
func (s *Service) WriteTx(writeFunc func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := writeFunc(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Close safely closes the database connection when the application shuts down.
func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		log.Printf("WARN: error closing database: %v", err)
		return
	}
	log.Println("Database connection closed.")
}

// DBorTx is an interface that allows query methods to accept either a
// `*sql.DB` for single queries or a `*sql.Tx` for operations within a
// transaction. This promotes code reuse.
type DBorTx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// IsUniqueViolation reports whether err was caused by a UNIQUE constraint.
// The modernc driver does not export a typed constraint error, so we match
// on the SQLite error text.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InitSchema sets up the database schema if the tables don't exist.
// This is idempotent and safe to run on every application start.
func (s *Service) InitSchema() error {
	return s.WriteTx(func(tx *sql.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS members (
				id INTEGER PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				alias TEXT,
				full_name TEXT,
				password_hash TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);`,

			`CREATE TABLE IF NOT EXISTS boat_types (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT,
				yardstick INTEGER NOT NULL -- Portsmouth Yardstick, 1000..2000
			);`,

			`CREATE TABLE IF NOT EXISTS boats (
				id INTEGER PRIMARY KEY,
				sail_number TEXT NOT NULL,
				boat_type_id INTEGER NOT NULL,
				FOREIGN KEY (boat_type_id) REFERENCES boat_types (id) ON DELETE CASCADE
			);`,

			`CREATE TABLE IF NOT EXISTS leagues (
				id INTEGER PRIMARY KEY,
				name TEXT UNIQUE NOT NULL,
				description TEXT,
				date_from DATE NOT NULL,
				date_to DATE NOT NULL
			);`,

			`CREATE TABLE IF NOT EXISTS races (
				id INTEGER PRIMARY KEY,
				league_id INTEGER,
				name TEXT NOT NULL,
				race_date DATE NOT NULL,
				status TEXT NOT NULL DEFAULT 'scheduled', -- scheduled, started, finished, verified
				FOREIGN KEY (league_id) REFERENCES leagues (id) ON DELETE SET NULL
			);`,

			// class_name and yardstick are snapshots taken at entry time.
			// Later edits to the registered boat must not touch past scoring.
			`CREATE TABLE IF NOT EXISTS race_entries (
				id INTEGER PRIMARY KEY,
				race_id INTEGER NOT NULL,
				helm_id INTEGER NOT NULL,
				crew_id INTEGER,
				boat_id INTEGER NOT NULL,
				class_name TEXT NOT NULL,
				yardstick INTEGER NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (race_id, boat_id),
				FOREIGN KEY (race_id) REFERENCES races (id) ON DELETE CASCADE,
				FOREIGN KEY (helm_id) REFERENCES members (id) ON DELETE CASCADE,
				FOREIGN KEY (crew_id) REFERENCES members (id) ON DELETE SET NULL,
				FOREIGN KEY (boat_id) REFERENCES boats (id) ON DELETE CASCADE
			);`,

			// Append-only. The UNIQUE (device_id, seq) constraint is what
			// makes event submission safe to retry over a flaky link.
			`CREATE TABLE IF NOT EXISTS race_events (
				id INTEGER PRIMARY KEY,
				race_id INTEGER NOT NULL,
				device_id INTEGER NOT NULL,
				seq INTEGER NOT NULL,
				kind TEXT NOT NULL, -- start, lap, undo, finish, restart
				entry_id INTEGER,
				race_seconds REAL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (device_id, seq),
				FOREIGN KEY (race_id) REFERENCES races (id) ON DELETE CASCADE,
				FOREIGN KEY (entry_id) REFERENCES race_entries (id) ON DELETE SET NULL
			);`,

			`CREATE TABLE IF NOT EXISTS result_sets (
				id INTEGER PRIMARY KEY,
				race_id INTEGER NOT NULL,
				member_id INTEGER NOT NULL,
				source TEXT NOT NULL, -- timed, manual_time, manual_position
				state TEXT NOT NULL DEFAULT 'draft', -- draft, saved, published
				published_at DATETIME,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (race_id, member_id, source),
				FOREIGN KEY (race_id) REFERENCES races (id) ON DELETE CASCADE,
				FOREIGN KEY (member_id) REFERENCES members (id) ON DELETE CASCADE
			);`,

			`CREATE TABLE IF NOT EXISTS result_set_entries (
				id INTEGER PRIMARY KEY,
				result_set_id INTEGER NOT NULL,
				entry_id INTEGER NOT NULL,
				laps INTEGER,
				elapsed_seconds REAL,
				corrected_seconds REAL,
				position INTEGER,
				points INTEGER,
				tied INTEGER NOT NULL DEFAULT 0,
				UNIQUE (result_set_id, entry_id),
				FOREIGN KEY (result_set_id) REFERENCES result_sets (id) ON DELETE CASCADE,
				FOREIGN KEY (entry_id) REFERENCES race_entries (id) ON DELETE CASCADE
			);`,
		}

		for _, stmt := range stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
