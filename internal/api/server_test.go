package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"quicktable/internal/booking"
	"quicktable/internal/database"
	"quicktable/internal/models"
	"quicktable/internal/reconcile"
	"quicktable/internal/schedule"
)

type stubBookings struct {
	availability *booking.AvailabilityResult
	slots        []string
	created      *models.Reservation
	updated      *models.Reservation
	list         []models.Reservation
	err          error
}

func (s *stubBookings) CheckAvailability(context.Context, string, string, string) (*booking.AvailabilityResult, error) {
	return s.availability, s.err
}

func (s *stubBookings) ListAvailableSlots(context.Context, string) ([]string, error) {
	return s.slots, s.err
}

func (s *stubBookings) CreateReservation(context.Context, booking.CreateRequest) (*models.Reservation, error) {
	return s.created, s.err
}

func (s *stubBookings) UpdateReservationStatus(context.Context, string, string) (*models.Reservation, error) {
	return s.updated, s.err
}

func (s *stubBookings) ListReservations(context.Context, string, bool) ([]models.Reservation, error) {
	return s.list, s.err
}

func (s *stubBookings) DeleteReservation(context.Context, string) error {
	return s.err
}

type stubHours struct {
	record       *models.RestaurantHours
	affectsSlots bool
	err          error
}

func (s *stubHours) Get(context.Context, string) (*models.RestaurantHours, error) {
	return s.record, s.err
}

func (s *stubHours) Upsert(context.Context, string, schedule.Update) (*models.RestaurantHours, bool, error) {
	return s.record, s.affectsSlots, s.err
}

func (s *stubHours) Delete(context.Context, string) error {
	return s.err
}

type stubReconciler struct {
	summary reconcile.Summary
	calls   int
}

func (s *stubReconciler) ReconcileDate(_ context.Context, date string) (reconcile.Summary, error) {
	s.calls++
	s.summary.Date = date
	return s.summary, nil
}

type stubTables struct {
	tables []models.Table
	err    error
}

func (s *stubTables) CreateTable(context.Context, *models.Table) error { return s.err }
func (s *stubTables) GetTable(context.Context, string) (*models.Table, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.tables) == 0 {
		return nil, database.ErrNotFound
	}
	return &s.tables[0], nil
}
func (s *stubTables) GetTableByNumber(context.Context, int) (*models.Table, error) {
	return nil, database.ErrNotFound
}
func (s *stubTables) ListTables(context.Context) ([]models.Table, error) { return s.tables, s.err }
func (s *stubTables) UpdateTableStatus(context.Context, string, string, string) error {
	return s.err
}
func (s *stubTables) DeleteTable(context.Context, string) error { return s.err }

type stubBus struct{}

func (stubBus) PublishJSON(string, any) error { return nil }

type serverFixture struct {
	bookings   *stubBookings
	hours      *stubHours
	reconciler *stubReconciler
	tables     *stubTables
	handler    http.Handler
}

func newFixture() *serverFixture {
	f := &serverFixture{
		bookings:   &stubBookings{},
		hours:      &stubHours{},
		reconciler: &stubReconciler{},
		tables:     &stubTables{},
	}
	srv := NewHTTPServer(0, f.bookings, f.hours, f.reconciler, f.tables, stubBus{}, nil, zerolog.New(io.Discard))
	f.handler = srv.Handler()
	return f
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	f := newFixture()
	f.bookings.availability = &booking.AvailabilityResult{Available: true}

	rec := doJSON(t, f.handler, http.MethodPost, "/api/availability/check", map[string]string{
		"table_id": "t1",
		"date":     "2026-06-01",
		"time":     "18:00",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var got booking.AvailabilityResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Available)
}

func TestCheckAvailabilityRejectsUnknownFields(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPost, "/api/availability/check", map[string]string{
		"table_id": "t1",
		"bogus":    "field",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityMethodNotAllowed(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodGet, "/api/availability/check", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListSlotsEndpoint(t *testing.T) {
	f := newFixture()
	f.bookings.slots = []string{"18:00", "18:30"}

	rec := doJSON(t, f.handler, http.MethodGet, "/api/availability/slots?date=2026-06-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2026-06-01", got.Date)
	assert.Equal(t, []string{"18:00", "18:30"}, got.Slots)
}

func TestListSlotsRequiresDate(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodGet, "/api/availability/slots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationEndpoint(t *testing.T) {
	f := newFixture()
	f.bookings.created = &models.Reservation{
		ID:              "res-1",
		ReservationDate: "2026-06-01",
		ReservationHour: "18:00",
		Status:          models.StatusPending,
	}

	rec := doJSON(t, f.handler, http.MethodPost, "/api/reservations", map[string]any{
		"table_id":      "t1",
		"customer_name": "Ada",
		"guests":        2,
		"date":          "2026-06-01",
		"time":          "18:00",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got models.Reservation
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "res-1", got.ID)
}

func TestCreateReservationConflictBody(t *testing.T) {
	f := newFixture()
	f.bookings.err = &booking.ConflictError{Conflicting: []models.Reservation{
		{ID: "res-existing", ReservationHour: "18:00", Status: models.StatusAccepted},
	}}

	rec := doJSON(t, f.handler, http.MethodPost, "/api/reservations", map[string]any{
		"table_id":      "t1",
		"customer_name": "Ada",
		"guests":        2,
		"date":          "2026-06-01",
		"time":          "18:00",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var got struct {
		Conflicting []models.Reservation `json:"conflicting_reservations"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Conflicting, 1)
	assert.Equal(t, "res-existing", got.Conflicting[0].ID)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	f := newFixture()
	f.bookings.updated = &models.Reservation{
		ID:              "res-1",
		ReservationDate: "2026-06-01",
		Status:          models.StatusAccepted,
	}

	rec := doJSON(t, f.handler, http.MethodPatch, "/api/reservations/res-1/status", map[string]string{
		"status": "accepted",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Reservation
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatusAccepted, got.Status)
}

func TestUpdateStatusBadPath(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodPatch, "/api/reservations/res-1/notes", map[string]string{
		"status": "accepted",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReservationEndpoint(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodDelete, "/api/reservations/res-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	f.bookings.err = booking.ErrNotFound
	rec = doJSON(t, f.handler, http.MethodDelete, "/api/reservations/res-gone", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHoursEndpoint(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodDelete, "/api/hours/2026-06-01", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", booking.ErrInvalidInput, http.StatusBadRequest},
		{"invalid state", booking.ErrInvalidState, http.StatusUnprocessableEntity},
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"store not found", database.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.bookings.err = tt.err
			rec := doJSON(t, f.handler, http.MethodGet, "/api/reservations?date=2026-06-01", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHoursUpsertTriggersReconcile(t *testing.T) {
	f := newFixture()
	f.hours.record = &models.RestaurantHours{Date: "2026-06-01", IsOpen: true}
	f.hours.affectsSlots = true
	f.reconciler.summary = reconcile.Summary{Checked: 3, Relocated: 1}

	rec := doJSON(t, f.handler, http.MethodPut, "/api/hours/2026-06-01", map[string]string{
		"open_time": "15:00",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.reconciler.calls)

	var got struct {
		Reconcile reconcile.Summary `json:"reconcile"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Reconcile.Relocated)
}

func TestHoursUpsertNoReconcileWhenUnchanged(t *testing.T) {
	f := newFixture()
	f.hours.record = &models.RestaurantHours{Date: "2026-06-01", IsOpen: true}
	f.hours.affectsSlots = false

	rec := doJSON(t, f.handler, http.MethodPut, "/api/hours/2026-06-01", map[string]string{
		"open_time": "10:00",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.reconciler.calls)
}

func TestHoursGetAbsentReturnsDefaults(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodGet, "/api/hours/2026-06-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.RestaurantHours
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.IsOpen)
	assert.Equal(t, models.DefaultOpenTime, got.OpenTime)
	assert.Len(t, got.TimeSlots, 24)
}

func TestHoursRejectsBadDate(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodGet, "/api/hours/June-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHoursRejectsMalformedBody(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodPut, "/api/hours/2026-06-01", map[string]string{
		"open_time": "10am",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, f.handler, http.MethodPut, "/api/hours/2026-06-01", map[string]any{
		"blocked_hours": []string{"2pm-4pm"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManualReconcileEndpoint(t *testing.T) {
	f := newFixture()
	f.reconciler.summary = reconcile.Summary{Checked: 2, Cancelled: 2}

	rec := doJSON(t, f.handler, http.MethodPost, "/api/hours/2026-06-01/reconcile", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.reconciler.calls)
}

func TestTableEndpoints(t *testing.T) {
	f := newFixture()
	f.tables.tables = []models.Table{{ID: "tbl-1", Number: 4, Status: models.TableFree}}

	rec := doJSON(t, f.handler, http.MethodGet, "/api/tables", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, f.handler, http.MethodPost, "/api/tables", map[string]int{"number": 7})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, f.handler, http.MethodPost, "/api/tables", map[string]int{"number": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, f.handler, http.MethodPatch, "/api/tables/tbl-1/status", map[string]string{
		"status": "occupied", "customer_name": "Ada",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, f.handler, http.MethodPatch, "/api/tables/tbl-1/status", map[string]string{
		"status": "reserved",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, f.handler, http.MethodDelete, "/api/tables/tbl-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	rec := doJSON(t, f.handler, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestExportEndpoint(t *testing.T) {
	f := newFixture()
	f.bookings.list = []models.Reservation{
		{ID: "res-1", TableNumber: 4, CustomerName: "Ada", ReservationHour: "18:00", Status: models.StatusAccepted},
	}

	rec := doJSON(t, f.handler, http.MethodGet, "/api/reservations/export?date=2026-06-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reservations_2026-06-01.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}
