package booking

import (
	"testing"

	"quicktable/internal/models"
)

func reservationAt(table, date, hour, status string) models.Reservation {
	return models.Reservation{
		ID:              "res-" + table + "-" + hour,
		TableID:         table,
		ReservationDate: date,
		ReservationHour: hour,
		Status:          status,
		DataState:       models.DataStateActive,
	}
}

func TestConflictsOverlapWindow(t *testing.T) {
	existing := []models.Reservation{
		reservationAt("t1", "2026-06-01", "18:00", models.StatusAccepted),
	}

	tests := []struct {
		name     string
		hour     string
		conflict bool
	}{
		{"same slot", "18:00", true},
		{"an hour into the booking", "19:00", true},
		{"last overlapping mark", "19:30", true},
		{"window just ends", "20:00", false},
		{"well after", "20:30", false},
		{"abuts from before", "16:00", false},
		{"overlaps from before", "16:30", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasConflict(Candidate{TableID: "t1", Date: "2026-06-01", Hour: tt.hour}, existing)
			if err != nil {
				t.Fatalf("HasConflict: %v", err)
			}
			if got != tt.conflict {
				t.Errorf("%s vs existing 18:00: expected conflict=%v, got %v", tt.hour, tt.conflict, got)
			}
		})
	}
}

func TestConflictsSymmetry(t *testing.T) {
	a := reservationAt("t1", "2026-06-01", "18:00", models.StatusAccepted)
	b := reservationAt("t1", "2026-06-01", "19:00", models.StatusAccepted)

	abConflict, err := HasConflict(Candidate{TableID: "t1", Date: "2026-06-01", Hour: a.ReservationHour}, []models.Reservation{b})
	if err != nil {
		t.Fatal(err)
	}
	baConflict, err := HasConflict(Candidate{TableID: "t1", Date: "2026-06-01", Hour: b.ReservationHour}, []models.Reservation{a})
	if err != nil {
		t.Fatal(err)
	}
	if abConflict != baConflict {
		t.Errorf("conflict detection is not symmetric: a-vs-b=%v b-vs-a=%v", abConflict, baConflict)
	}
	if !abConflict {
		t.Error("18:00 and 19:00 on the same table must conflict")
	}
}

func TestConflictsIgnoresOtherTablesAndDates(t *testing.T) {
	existing := []models.Reservation{
		reservationAt("t2", "2026-06-01", "18:00", models.StatusAccepted),
		reservationAt("t1", "2026-06-02", "18:00", models.StatusAccepted),
	}

	got, err := HasConflict(Candidate{TableID: "t1", Date: "2026-06-01", Hour: "18:00"}, existing)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("reservations on other tables or dates must not conflict")
	}
}

func TestConflictsIgnoresArchivedAndTerminal(t *testing.T) {
	rejected := reservationAt("t1", "2026-06-01", "18:00", models.StatusRejected)
	rejected.DataState = models.DataStateArchived
	cancelled := reservationAt("t1", "2026-06-01", "18:30", models.StatusCancelled)
	cancelled.DataState = models.DataStateArchived

	got, err := HasConflict(Candidate{TableID: "t1", Date: "2026-06-01", Hour: "18:00"},
		[]models.Reservation{rejected, cancelled})
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("archived reservations must not conflict")
	}
}

func TestBlockingConflictsAcceptedOnly(t *testing.T) {
	existing := []models.Reservation{
		reservationAt("t1", "2026-06-01", "18:00", models.StatusPending),
		reservationAt("t1", "2026-06-01", "18:30", models.StatusAccepted),
	}
	c := Candidate{TableID: "t1", Date: "2026-06-01", Hour: "19:00"}

	all, err := Conflicts(c, existing)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 overlapping reservations, got %d", len(all))
	}

	blocking, err := BlockingConflicts(c, existing)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocking) != 1 {
		t.Fatalf("expected 1 blocking reservation, got %d", len(blocking))
	}
	if blocking[0].Status != models.StatusAccepted {
		t.Errorf("blocking reservation must be accepted, got %s", blocking[0].Status)
	}
}

func TestConflictsInvalidHour(t *testing.T) {
	_, err := Conflicts(Candidate{TableID: "t1", Date: "2026-06-01", Hour: "6pm"}, nil)
	if err == nil {
		t.Error("expected error for malformed hour")
	}
}
