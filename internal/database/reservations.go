package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quicktable/internal/models"
)

const reservationColumns = `id, table_id, table_number, customer_name, customer_email,
	customer_phone, guests, reservation_date, reservation_hour, reservation_time,
	status, data_state, is_accepted, notes, created_at, updated_at`

// CreateReservation inserts a reservation without any conflict guard.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO reservations (
			id, table_id, table_number, customer_name, customer_email,
			customer_phone, guests, reservation_date, reservation_hour,
			reservation_time, status, data_state, is_accepted, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TableID, r.TableNumber, r.CustomerName, r.CustomerEmail,
		r.CustomerPhone, r.Guests, r.ReservationDate, r.ReservationHour,
		r.ReservationTime, r.Status, int(r.DataState), r.IsAccepted(), r.Notes,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// CreateReservationGuarded re-runs the accepted-conflict check and the
// insert inside one transaction, closing the read-then-write race for a
// single store. It returns the accepted reservations that blocked the
// insert together with ErrConflict.
func (db *DB) CreateReservationGuarded(ctx context.Context, r *models.Reservation) ([]models.Reservation, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE table_id = ? AND reservation_date = ?
		AND status = ? AND data_state = ?
		ORDER BY reservation_hour`,
		r.TableID, r.ReservationDate, models.StatusAccepted, int(models.DataStateActive),
	)
	if err != nil {
		return nil, fmt.Errorf("query accepted reservations: %w", err)
	}
	existing, err := collectReservations(rows)
	if err != nil {
		return nil, err
	}

	start, err := r.StartMinute()
	if err != nil {
		return nil, fmt.Errorf("parse reservation hour: %w", err)
	}

	var blocking []models.Reservation
	for _, ex := range existing {
		if ex.OverlapsWindow(start) {
			blocking = append(blocking, ex)
		}
	}
	if len(blocking) > 0 {
		return blocking, ErrConflict
	}

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reservations (
			id, table_id, table_number, customer_name, customer_email,
			customer_phone, guests, reservation_date, reservation_hour,
			reservation_time, status, data_state, is_accepted, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TableID, r.TableNumber, r.CustomerName, r.CustomerEmail,
		r.CustomerPhone, r.Guests, r.ReservationDate, r.ReservationHour,
		r.ReservationTime, r.Status, int(r.DataState), r.IsAccepted(), r.Notes,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return nil, nil
}

// GetReservation returns a reservation by id.
func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

// ListReservationsForTableDate returns the active reservations for one
// table on one date, ordered by hour.
func (db *DB) ListReservationsForTableDate(ctx context.Context, tableID, date string) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE table_id = ? AND reservation_date = ? AND data_state = ?
		ORDER BY reservation_hour`,
		tableID, date, int(models.DataStateActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collectReservations(rows)
}

// ListActiveReservationsByDate returns every active reservation on a
// date regardless of table, ordered by hour.
func (db *DB) ListActiveReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE reservation_date = ? AND data_state = ?
		ORDER BY reservation_hour`,
		date, int(models.DataStateActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return collectReservations(rows)
}

// ListReservationsByDate returns every reservation on a date, archived
// included, ordered by hour.
func (db *DB) ListReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE reservation_date = ?
		ORDER BY reservation_hour`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations by date: %w", err)
	}
	return collectReservations(rows)
}

// UpdateReservation persists the mutable reservation fields. The stored
// is_accepted mirror is always rewritten from the status accessor.
func (db *DB) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	r.UpdatedAt = time.Now()
	result, err := db.ExecContext(ctx, `
		UPDATE reservations SET
			table_id = ?, table_number = ?, customer_name = ?,
			customer_email = ?, customer_phone = ?, guests = ?,
			reservation_date = ?, reservation_hour = ?, reservation_time = ?,
			status = ?, data_state = ?, is_accepted = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		r.TableID, r.TableNumber, r.CustomerName,
		r.CustomerEmail, r.CustomerPhone, r.Guests,
		r.ReservationDate, r.ReservationHour, r.ReservationTime,
		r.Status, int(r.DataState), r.IsAccepted(), r.Notes, r.UpdatedAt,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReservation removes a reservation document.
func (db *DB) DeleteReservation(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		r         models.Reservation
		dataState int
		accepted  bool
		email     sql.NullString
		phone     sql.NullString
		notes     sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.TableID, &r.TableNumber, &r.CustomerName, &email,
		&phone, &r.Guests, &r.ReservationDate, &r.ReservationHour,
		&r.ReservationTime, &r.Status, &dataState, &accepted, &notes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.DataState = models.DataState(dataState)
	if email.Valid {
		r.CustomerEmail = email.String
	}
	if phone.Valid {
		r.CustomerPhone = phone.String
	}
	if notes.Valid {
		r.Notes = notes.String
	}
	return &r, nil
}

func collectReservations(rows *sql.Rows) ([]models.Reservation, error) {
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}
