package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"quicktable/internal/models"
)

// GetHours returns the operating-hours record for a date, or ErrNotFound
// when no record exists. Callers treat absence as "open, default hours".
func (db *DB) GetHours(ctx context.Context, date string) (*models.RestaurantHours, error) {
	var (
		h            models.RestaurantHours
		timeSlots    string
		blockedHours string
	)
	err := db.QueryRowContext(ctx, `
		SELECT date, is_open, open_time, close_time, time_slots, blocked_hours,
		       created_at, updated_at
		FROM restaurant_hours WHERE date = ?`, date,
	).Scan(
		&h.Date, &h.IsOpen, &h.OpenTime, &h.CloseTime, &timeSlots, &blockedHours,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get hours: %w", err)
	}

	if err := json.Unmarshal([]byte(timeSlots), &h.TimeSlots); err != nil {
		return nil, fmt.Errorf("decode time slots: %w", err)
	}
	if err := json.Unmarshal([]byte(blockedHours), &h.BlockedHours); err != nil {
		return nil, fmt.Errorf("decode blocked hours: %w", err)
	}
	return &h, nil
}

// UpsertHours creates or replaces the hours record for its date.
func (db *DB) UpsertHours(ctx context.Context, h *models.RestaurantHours) error {
	timeSlots, err := json.Marshal(sliceOrEmpty(h.TimeSlots))
	if err != nil {
		return fmt.Errorf("encode time slots: %w", err)
	}
	blockedHours, err := json.Marshal(sliceOrEmpty(h.BlockedHours))
	if err != nil {
		return fmt.Errorf("encode blocked hours: %w", err)
	}

	now := time.Now()
	h.UpdatedAt = now
	_, err = db.ExecContext(ctx, `
		INSERT INTO restaurant_hours (
			date, is_open, open_time, close_time, time_slots, blocked_hours,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			is_open = excluded.is_open,
			open_time = excluded.open_time,
			close_time = excluded.close_time,
			time_slots = excluded.time_slots,
			blocked_hours = excluded.blocked_hours,
			updated_at = excluded.updated_at`,
		h.Date, h.IsOpen, h.OpenTime, h.CloseTime, string(timeSlots), string(blockedHours),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert hours: %w", err)
	}
	return nil
}

// DeleteHours removes the record for a date, restoring the default-open
// fallback for it.
func (db *DB) DeleteHours(ctx context.Context, date string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM restaurant_hours WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("delete hours: %w", err)
	}
	return nil
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
