// Package api exposes the core engine operations over HTTP for the
// dashboard layers that live outside this service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"quicktable/internal/booking"
	"quicktable/internal/cache"
	"quicktable/internal/database"
	"quicktable/internal/models"
	"quicktable/internal/reconcile"
	"quicktable/internal/schedule"
)

// BookingService is the availability and lifecycle surface the handlers
// call.
type BookingService interface {
	CheckAvailability(ctx context.Context, tableID, date, hour string) (*booking.AvailabilityResult, error)
	ListAvailableSlots(ctx context.Context, date string) ([]string, error)
	CreateReservation(ctx context.Context, req booking.CreateRequest) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string) (*models.Reservation, error)
	ListReservations(ctx context.Context, date string, includeArchived bool) ([]models.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// HoursService manages per-date operating hours.
type HoursService interface {
	Get(ctx context.Context, date string) (*models.RestaurantHours, error)
	Upsert(ctx context.Context, date string, upd schedule.Update) (*models.RestaurantHours, bool, error)
	Delete(ctx context.Context, date string) error
}

// Reconciler repairs a date's reservations after hours changes.
type Reconciler interface {
	ReconcileDate(ctx context.Context, date string) (reconcile.Summary, error)
}

// TableStore manages restaurant tables.
type TableStore interface {
	CreateTable(ctx context.Context, t *models.Table) error
	GetTable(ctx context.Context, id string) (*models.Table, error)
	GetTableByNumber(ctx context.Context, number int) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	UpdateTableStatus(ctx context.Context, id, status, customerName string) error
	DeleteTable(ctx context.Context, id string) error
}

// Broadcaster emits realtime mutation events, fire-and-forget.
type Broadcaster interface {
	PublishJSON(eventType string, payload any) error
}

// HTTPServer serves the engine API.
type HTTPServer struct {
	server     *http.Server
	bookings   BookingService
	hours      HoursService
	reconciler Reconciler
	tables     TableStore
	bus        Broadcaster
	cache      *cache.Cache
	logger     zerolog.Logger
}

// NewHTTPServer wires handlers and returns a server listening on port.
func NewHTTPServer(
	port int,
	bookings BookingService,
	hours HoursService,
	reconciler Reconciler,
	tables TableStore,
	bus Broadcaster,
	readCache *cache.Cache,
	logger zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		bookings:   bookings,
		hours:      hours,
		reconciler: reconciler,
		tables:     tables,
		bus:        bus,
		cache:      readCache,
		logger:     logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability/check", s.handleCheckAvailability)
	mux.HandleFunc("/api/availability/slots", s.handleListSlots)
	mux.HandleFunc("/api/reservations", s.handleReservations)
	mux.HandleFunc("/api/reservations/export", s.handleExportReservations)
	mux.HandleFunc("/api/reservations/", s.handleReservationByID)
	mux.HandleFunc("/api/hours/", s.handleHours)
	mux.HandleFunc("/api/tables", s.handleTables)
	mux.HandleFunc("/api/tables/", s.handleTableByID)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
// Conflict errors carry the blocking reservations in the body.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":                    "time slot conflicts with an accepted reservation",
			"conflicting_reservations": conflict.Conflicting,
		})
		return
	}

	switch {
	case errors.Is(err, booking.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrInvalidState):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrDuplicateNumber):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
