// Package database is the sqlite-backed document store the engine
// collaborates with. Collections: reservations, restaurant_hours, tables.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"database/sql"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB represents the database connection.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a guarded insert finds an overlapping
	// accepted reservation inside its transaction.
	ErrConflict = errors.New("conflicting reservation")
	// ErrDuplicateNumber is returned when a table number is already taken.
	ErrDuplicateNumber = errors.New("table number already exists")
)

// NewDB initializes a new database connection and creates tables if they
// don't exist.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and a busy timeout keep concurrent request handlers from
	// tripping over each other.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			table_number INTEGER NOT NULL DEFAULT 0,
			customer_name TEXT NOT NULL,
			customer_email TEXT,
			customer_phone TEXT,
			guests INTEGER NOT NULL DEFAULT 1,
			reservation_date TEXT NOT NULL,
			reservation_hour TEXT NOT NULL,
			reservation_time TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			data_state INTEGER NOT NULL DEFAULT 1,
			is_accepted BOOLEAN NOT NULL DEFAULT 0,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS restaurant_hours (
			date TEXT PRIMARY KEY,
			is_open BOOLEAN NOT NULL DEFAULT 1,
			open_time TEXT NOT NULL DEFAULT '10:00',
			close_time TEXT NOT NULL DEFAULT '22:00',
			time_slots TEXT NOT NULL DEFAULT '[]',
			blocked_hours TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			number INTEGER UNIQUE NOT NULL,
			status TEXT NOT NULL DEFAULT 'free',
			customer_name TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_table_date ON reservations(table_id, reservation_date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(reservation_date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_data_state ON reservations(data_state)`,
		`CREATE INDEX IF NOT EXISTS idx_tables_number ON tables(number)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
