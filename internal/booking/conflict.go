package booking

import (
	"quicktable/internal/models"
)

// Candidate describes a proposed reservation slot.
type Candidate struct {
	TableID string
	Date    string // YYYY-MM-DD
	Hour    string // HH:MM
}

// obstacle reports whether an existing reservation participates in
// conflict checks at all: active records on the same table and date
// whose status is pending or accepted.
func obstacle(c Candidate, r *models.Reservation) bool {
	if !r.IsActive() {
		return false
	}
	if r.TableID != c.TableID || r.ReservationDate != c.Date {
		return false
	}
	return r.Status == models.StatusPending || r.Status == models.StatusAccepted
}

// Conflicts returns every pending or accepted reservation whose booking
// window overlaps the candidate's. Windows are [start, start+2h); the
// overlap test is newStart < exStart+2h && newStart+2h > exStart.
func Conflicts(c Candidate, existing []models.Reservation) ([]models.Reservation, error) {
	start, err := models.ParseClock(c.Hour)
	if err != nil {
		return nil, invalidInput("reservation hour: %v", err)
	}

	var conflicting []models.Reservation
	for i := range existing {
		r := &existing[i]
		if !obstacle(c, r) {
			continue
		}
		if r.OverlapsWindow(start) {
			conflicting = append(conflicting, *r)
		}
	}
	return conflicting, nil
}

// BlockingConflicts returns the accepted-only subset of Conflicts: the
// reservations that actually prevent a booking. Pending overlaps are
// surfaced separately as soft warnings.
func BlockingConflicts(c Candidate, existing []models.Reservation) ([]models.Reservation, error) {
	all, err := Conflicts(c, existing)
	if err != nil {
		return nil, err
	}
	var blocking []models.Reservation
	for _, r := range all {
		if r.Status == models.StatusAccepted {
			blocking = append(blocking, r)
		}
	}
	return blocking, nil
}

// HasConflict reports whether any pending or accepted reservation
// overlaps the candidate.
func HasConflict(c Candidate, existing []models.Reservation) (bool, error) {
	conflicting, err := Conflicts(c, existing)
	if err != nil {
		return false, err
	}
	return len(conflicting) > 0, nil
}

// splitByStatus partitions conflicts into accepted (blocking) and
// pending (soft warning) groups.
func splitByStatus(conflicting []models.Reservation) (accepted, pending []models.Reservation) {
	for _, r := range conflicting {
		switch r.Status {
		case models.StatusAccepted:
			accepted = append(accepted, r)
		case models.StatusPending:
			pending = append(pending, r)
		}
	}
	return accepted, pending
}
