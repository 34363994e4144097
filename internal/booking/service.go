// Package booking implements reservation conflict detection, the
// availability checks built on top of it, and the reservation lifecycle.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quicktable/internal/database"
	"quicktable/internal/metrics"
	"quicktable/internal/models"
)

// ReservationStore is the document-store surface the service needs for
// reservations.
type ReservationStore interface {
	CreateReservationGuarded(ctx context.Context, r *models.Reservation) ([]models.Reservation, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservationsForTableDate(ctx context.Context, tableID, date string) ([]models.Reservation, error)
	ListActiveReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error)
	ListReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
}

// HoursProvider resolves operating hours for a date. Get returns
// (nil, nil) when no record exists; AvailableSlots applies the
// default-hours fallback and the blocked-range filter.
type HoursProvider interface {
	Get(ctx context.Context, date string) (*models.RestaurantHours, error)
	AvailableSlots(ctx context.Context, date string) ([]string, error)
}

// Notifier delivers reservation-status emails. Calls are fire-and-forget;
// failures never affect the reservation operation.
type Notifier interface {
	ReservationStatusChanged(ctx context.Context, r *models.Reservation) error
}

// Broadcaster emits realtime events on mutations, same no-block-on-failure
// contract as Notifier.
type Broadcaster interface {
	PublishJSON(eventType string, payload any) error
}

// AvailabilityResult is the answer to a slot availability question.
type AvailabilityResult struct {
	Available               bool                 `json:"available"`
	HasConflict             bool                 `json:"has_conflict"`
	ConflictingReservations []models.Reservation `json:"conflicting_reservations"`
	PendingConflicts        []models.Reservation `json:"pending_conflicts,omitempty"`
	Closed                  bool                 `json:"closed,omitempty"`
}

// CreateRequest carries the fields for a new reservation.
type CreateRequest struct {
	TableID       string `json:"table_id"`
	TableNumber   int    `json:"table_number"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Guests        int    `json:"guests"`
	Date          string `json:"date"` // YYYY-MM-DD
	Hour          string `json:"time"` // HH:MM
	Notes         string `json:"notes"`
}

// Service answers availability questions and drives the reservation
// lifecycle.
type Service struct {
	store    ReservationStore
	hours    HoursProvider
	notifier Notifier
	bus      Broadcaster
	logger   zerolog.Logger
}

// NewService creates a booking service.
func NewService(store ReservationStore, hours HoursProvider, notifier Notifier, bus Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		hours:    hours,
		notifier: notifier,
		bus:      bus,
		logger:   logger.With().Str("component", "booking").Logger(),
	}
}

// CheckAvailability reports whether a table can be booked at date+hour.
// A closed day rejects outright; otherwise only accepted reservations
// block, pending overlaps come back as soft warnings.
func (s *Service) CheckAvailability(ctx context.Context, tableID, date, hour string) (*AvailabilityResult, error) {
	if tableID == "" {
		return nil, invalidInput("table_id is required")
	}
	if !models.ValidDate(date) {
		return nil, invalidInput("date %q, expected YYYY-MM-DD", date)
	}
	if _, err := models.ParseClock(hour); err != nil {
		return nil, invalidInput("%v", err)
	}

	open, err := s.dayOpen(ctx, date)
	if err != nil {
		return nil, err
	}
	if !open {
		return &AvailabilityResult{Available: false, Closed: true}, nil
	}

	existing, err := s.store.ListReservationsForTableDate(ctx, tableID, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	conflicting, err := Conflicts(Candidate{TableID: tableID, Date: date, Hour: hour}, existing)
	if err != nil {
		return nil, err
	}
	accepted, pending := splitByStatus(conflicting)

	return &AvailabilityResult{
		Available:               len(accepted) == 0,
		HasConflict:             len(accepted) > 0,
		ConflictingReservations: accepted,
		PendingConflicts:        pending,
	}, nil
}

// ListAvailableSlots enumerates the bookable half-hour marks for a date,
// blocked ranges excluded.
func (s *Service) ListAvailableSlots(ctx context.Context, date string) ([]string, error) {
	if !models.ValidDate(date) {
		return nil, invalidInput("date %q, expected YYYY-MM-DD", date)
	}
	return s.hours.AvailableSlots(ctx, date)
}

// CreateReservation validates the request, re-checks restaurant-open and
// accepted-conflict at write time and persists the reservation as
// pending. The check-then-insert runs inside one store transaction; the
// pre-check here only exists to answer fast without opening one.
func (s *Service) CreateReservation(ctx context.Context, req CreateRequest) (*models.Reservation, error) {
	if err := validateCreate(req); err != nil {
		metrics.IncReservationCreated("invalid")
		return nil, err
	}

	open, err := s.dayOpen(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	if !open {
		metrics.IncReservationCreated("closed")
		return nil, fmt.Errorf("%w: restaurant is closed on %s", ErrInvalidState, req.Date)
	}

	existing, err := s.store.ListReservationsForTableDate(ctx, req.TableID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	blocking, err := BlockingConflicts(Candidate{TableID: req.TableID, Date: req.Date, Hour: req.Hour}, existing)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		metrics.IncReservationCreated("conflict")
		return nil, &ConflictError{Conflicting: blocking}
	}

	r := &models.Reservation{
		ID:              uuid.NewString(),
		TableID:         req.TableID,
		TableNumber:     req.TableNumber,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Guests:          req.Guests,
		ReservationDate: req.Date,
		ReservationHour: req.Hour,
		ReservationTime: req.Date + " " + req.Hour,
		Status:          models.StatusPending,
		DataState:       models.DataStateActive,
		Notes:           req.Notes,
	}

	conflicting, err := s.store.CreateReservationGuarded(ctx, r)
	if errors.Is(err, database.ErrConflict) {
		metrics.IncReservationCreated("conflict")
		return nil, &ConflictError{Conflicting: conflicting}
	}
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	metrics.IncReservationCreated("created")
	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("table_id", r.TableID).
		Str("date", r.ReservationDate).
		Str("hour", r.ReservationHour).
		Msg("reservation created")

	s.fanout(ctx, "reservation.created", r)
	return r, nil
}

// UpdateReservationStatus applies a status transition. Rejected and
// cancelled reservations are archived and stop participating in conflict
// checks.
func (s *Service) UpdateReservationStatus(ctx context.Context, id, status string) (*models.Reservation, error) {
	if !models.ValidStatus(status) {
		return nil, invalidInput("unknown status %q", status)
	}

	r, err := s.store.GetReservation(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	if err := r.SetStatus(status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.store.UpdateReservation(ctx, r); err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}

	metrics.IncReservationStatus(status)
	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("status", status).
		Msg("reservation status updated")

	s.fanout(ctx, "reservation.status_changed", r)
	return r, nil
}

// ListReservations returns the reservations for a date. With
// includeArchived the rejected and cancelled history comes back too.
func (s *Service) ListReservations(ctx context.Context, date string, includeArchived bool) ([]models.Reservation, error) {
	if !models.ValidDate(date) {
		return nil, invalidInput("date %q, expected YYYY-MM-DD", date)
	}
	if includeArchived {
		return s.store.ListReservationsByDate(ctx, date)
	}
	return s.store.ListActiveReservationsByDate(ctx, date)
}

// DeleteReservation removes a reservation document outright. Status
// transitions are the normal way to retire one; deletion is for
// operator cleanup.
func (s *Service) DeleteReservation(ctx context.Context, id string) error {
	r, err := s.store.GetReservation(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}

	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	s.logger.Info().Str("reservation_id", id).Msg("reservation deleted")
	s.fanout(ctx, "reservation.deleted", r)
	return nil
}

// dayOpen decides whether the restaurant takes bookings on a date.
// Absence of an hours record means open with default hours.
func (s *Service) dayOpen(ctx context.Context, date string) (bool, error) {
	h, err := s.hours.Get(ctx, date)
	if err != nil {
		return false, fmt.Errorf("get hours: %w", err)
	}
	if h == nil {
		return true, nil
	}
	return h.IsOpen, nil
}

// fanout delivers the notification and broadcast side effects. Both are
// fire-and-forget: failures are logged, never surfaced.
func (s *Service) fanout(ctx context.Context, eventType string, r *models.Reservation) {
	if s.notifier != nil {
		if err := s.notifier.ReservationStatusChanged(ctx, r); err != nil {
			s.logger.Warn().Err(err).Str("reservation_id", r.ID).Msg("notification failed")
		}
	}
	if s.bus != nil {
		if err := s.bus.PublishJSON(eventType, r); err != nil {
			s.logger.Warn().Err(err).Str("event", eventType).Msg("broadcast failed")
		}
	}
}

func validateCreate(req CreateRequest) error {
	if req.TableID == "" {
		return invalidInput("table_id is required")
	}
	if req.CustomerName == "" {
		return invalidInput("customer_name is required")
	}
	if req.Guests <= 0 {
		return invalidInput("guests must be positive")
	}
	if !models.ValidDate(req.Date) {
		return invalidInput("date %q, expected YYYY-MM-DD", req.Date)
	}
	minute, err := models.ParseClock(req.Hour)
	if err != nil {
		return invalidInput("%v", err)
	}
	if minute%30 != 0 {
		return invalidInput("time %q is not on a 30-minute mark", req.Hour)
	}
	return nil
}
