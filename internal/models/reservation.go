package models

import (
	"fmt"
	"time"
)

// Reservation statuses.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// DataState marks whether a reservation still participates in conflict
// checks and default listings.
type DataState int

const (
	DataStateActive   DataState = 1
	DataStateArchived DataState = 2
)

// BookingDuration is the occupancy window assumed for every reservation
// when testing overlap.
const BookingDuration = 2 * time.Hour

// Reservation represents a table reservation record.
type Reservation struct {
	ID              string    `json:"id"`
	TableID         string    `json:"table_id"`
	TableNumber     int       `json:"table_number"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	Guests          int       `json:"guests"`
	ReservationDate string    `json:"reservation_date"` // YYYY-MM-DD
	ReservationHour string    `json:"reservation_hour"` // HH:MM, 30-minute marks
	ReservationTime string    `json:"reservation_time"` // "YYYY-MM-DD HH:MM", derived
	Status          string    `json:"status"`           // pending, accepted, rejected, cancelled
	DataState       DataState `json:"data_state"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsAccepted reports whether the reservation has been accepted. Derived
// from Status so the two can never drift; the persisted mirror column is
// written from this accessor on every write path.
func (r *Reservation) IsAccepted() bool {
	return r.Status == StatusAccepted
}

// IsActive reports whether the reservation participates in conflict
// checks and default listings.
func (r *Reservation) IsActive() bool {
	return r.DataState == DataStateActive
}

// StartMinute returns the reservation hour as minutes since midnight.
func (r *Reservation) StartMinute() (int, error) {
	return ParseClock(r.ReservationHour)
}

// OverlapsWindow checks the reservation's own booking window against a
// candidate window starting at candidateStart (minutes since midnight).
// Both windows are [start, start+BookingDuration).
func (r *Reservation) OverlapsWindow(candidateStart int) bool {
	start, err := r.StartMinute()
	if err != nil {
		return false
	}
	span := int(BookingDuration.Minutes())
	return candidateStart < start+span && candidateStart+span > start
}

// SetStatus applies a status transition, archiving terminal records and
// keeping the derived composite fields consistent.
func (r *Reservation) SetStatus(status string) error {
	if !CanTransition(r.Status, status) {
		return fmt.Errorf("cannot transition reservation from %s to %s", r.Status, status)
	}
	r.Status = status
	if status == StatusRejected || status == StatusCancelled {
		r.DataState = DataStateArchived
	}
	r.UpdatedAt = time.Now()
	return nil
}

// Relocate moves the reservation to a new hour and rewrites the derived
// reservation time.
func (r *Reservation) Relocate(hour string) {
	r.ReservationHour = hour
	r.ReservationTime = r.ReservationDate + " " + hour
	r.UpdatedAt = time.Now()
}

// AppendNote appends a line to the reservation notes.
func (r *Reservation) AppendNote(note string) {
	if r.Notes == "" {
		r.Notes = note
		return
	}
	r.Notes += "\n" + note
}

// statusTransitions enumerates the allowed status moves. Rejected and
// cancelled are terminal; accepted can still be cancelled or rejected by
// an admin or the reconciler.
var statusTransitions = map[string][]string{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusRejected, StatusCancelled},
}

// CanTransition checks if a status transition is allowed.
func CanTransition(from, to string) bool {
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
