package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quicktable/internal/models"
)

// CreateTable inserts a restaurant table.
func (db *DB) CreateTable(ctx context.Context, t *models.Table) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := db.ExecContext(ctx, `
		INSERT INTO tables (id, number, status, customer_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Number, t.Status, t.CustomerName, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

// GetTable returns a table by id.
func (db *DB) GetTable(ctx context.Context, id string) (*models.Table, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, number, status, customer_name, created_at, updated_at
		FROM tables WHERE id = ?`, id)
	return scanTable(row)
}

// GetTableByNumber returns a table by its unique number.
func (db *DB) GetTableByNumber(ctx context.Context, number int) (*models.Table, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, number, status, customer_name, created_at, updated_at
		FROM tables WHERE number = ?`, number)
	return scanTable(row)
}

// ListTables returns all tables ordered by number.
func (db *DB) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, number, status, customer_name, created_at, updated_at
		FROM tables ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// UpdateTableStatus sets occupancy status and the current customer name.
func (db *DB) UpdateTableStatus(ctx context.Context, id, status, customerName string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE tables SET status = ?, customer_name = ?, updated_at = ? WHERE id = ?`,
		status, customerName, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update table status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update table status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTable removes a table. Reservations referencing it are left in
// place; there is no cascading delete.
func (db *DB) DeleteTable(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTable(row rowScanner) (*models.Table, error) {
	var (
		t            models.Table
		customerName sql.NullString
	)
	err := row.Scan(&t.ID, &t.Number, &t.Status, &customerName, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	if customerName.Valid {
		t.CustomerName = customerName.String
	}
	return &t, nil
}
