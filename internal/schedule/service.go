// Package schedule manages the per-date operating-hours records and the
// time slots derived from them.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"quicktable/internal/database"
	"quicktable/internal/models"
	"quicktable/internal/slots"
)

// Store is the document-store surface for hours records.
type Store interface {
	GetHours(ctx context.Context, date string) (*models.RestaurantHours, error)
	UpsertHours(ctx context.Context, h *models.RestaurantHours) error
	DeleteHours(ctx context.Context, date string) error
}

// Update describes a partial hours change. Nil fields are left alone.
type Update struct {
	IsOpen       *bool     `json:"is_open,omitempty"`
	OpenTime     *string   `json:"open_time,omitempty"`
	CloseTime    *string   `json:"close_time,omitempty"`
	BlockedHours *[]string `json:"blocked_hours,omitempty"`
}

// Service reads and writes operating hours.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates an hours service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

// Get returns the hours record for a date, or (nil, nil) when none
// exists. Callers treat absence as "open, default hours".
func (s *Service) Get(ctx context.Context, date string) (*models.RestaurantHours, error) {
	h, err := s.store.GetHours(ctx, date)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get hours: %w", err)
	}
	return h, nil
}

// Upsert creates or updates the record for a date and reports whether
// the change affected the bookable-slot set, which is what obliges a
// reconciliation pass. Time slots are regenerated only when the open or
// close time actually changes (or on create); a blocked-hours-only
// update leaves them untouched.
func (s *Service) Upsert(ctx context.Context, date string, upd Update) (*models.RestaurantHours, bool, error) {
	if !models.ValidDate(date) {
		return nil, false, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if upd.BlockedHours != nil {
		for _, raw := range *upd.BlockedHours {
			if _, err := models.ParseBlockedRange(raw); err != nil {
				return nil, false, err
			}
		}
	}

	existing, err := s.Get(ctx, date)
	if err != nil {
		return nil, false, err
	}

	h, affectsSlots, err := merge(date, existing, upd)
	if err != nil {
		return nil, false, err
	}

	if err := s.store.UpsertHours(ctx, h); err != nil {
		return nil, false, fmt.Errorf("upsert hours: %w", err)
	}

	s.logger.Info().
		Str("date", date).
		Bool("is_open", h.IsOpen).
		Str("open", h.OpenTime).
		Str("close", h.CloseTime).
		Int("slots", len(h.TimeSlots)).
		Msg("hours upserted")

	return h, affectsSlots, nil
}

// Delete drops the record for a date, restoring the default-open
// behavior for it.
func (s *Service) Delete(ctx context.Context, date string) error {
	if !models.ValidDate(date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if err := s.store.DeleteHours(ctx, date); err != nil {
		return fmt.Errorf("delete hours: %w", err)
	}
	s.logger.Info().Str("date", date).Msg("hours record deleted")
	return nil
}

// AvailableSlots returns the bookable marks for a date: the record's
// time slots (falling back to the default generator output when the
// record is absent or carries none) minus every blocked range.
func (s *Service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	h, err := s.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return slots.GenerateDefault(), nil
	}

	marks := h.TimeSlots
	if len(marks) == 0 {
		marks = slots.GenerateDefault()
	}

	available := make([]string, 0, len(marks))
	for _, m := range marks {
		if h.IsBlocked(m) {
			continue
		}
		available = append(available, m)
	}
	return available, nil
}

// merge folds an update into the existing record (or the defaults when
// creating) and regenerates time slots when required.
func merge(date string, existing *models.RestaurantHours, upd Update) (*models.RestaurantHours, bool, error) {
	h := &models.RestaurantHours{
		Date:         date,
		IsOpen:       true,
		OpenTime:     models.DefaultOpenTime,
		CloseTime:    models.DefaultCloseTime,
		BlockedHours: []string{},
	}
	creating := existing == nil
	if !creating {
		*h = *existing
	}

	timesChanged := false
	if upd.OpenTime != nil && *upd.OpenTime != h.OpenTime {
		h.OpenTime = *upd.OpenTime
		timesChanged = true
	}
	if upd.CloseTime != nil && *upd.CloseTime != h.CloseTime {
		h.CloseTime = *upd.CloseTime
		timesChanged = true
	}

	openChanged := false
	if upd.IsOpen != nil && *upd.IsOpen != h.IsOpen {
		h.IsOpen = *upd.IsOpen
		openChanged = true
	}

	blockedChanged := false
	if upd.BlockedHours != nil {
		blockedChanged = !equalStrings(h.BlockedHours, *upd.BlockedHours)
		h.BlockedHours = append([]string(nil), *upd.BlockedHours...)
	}

	// Reopening a day that was stored closed without fresh times falls
	// back to the defaults instead of the 00:00 sentinels.
	if h.IsOpen && openChanged && !timesChanged && h.OpenTime == models.ClosedTime && h.CloseTime == models.ClosedTime {
		h.OpenTime = models.DefaultOpenTime
		h.CloseTime = models.DefaultCloseTime
	}

	if !h.IsOpen {
		h.OpenTime = models.ClosedTime
		h.CloseTime = models.ClosedTime
		h.TimeSlots = []string{}
	} else if creating || timesChanged || openChanged {
		marks, err := slots.Generate(h.OpenTime, h.CloseTime)
		if err != nil {
			return nil, false, err
		}
		if marks == nil {
			marks = []string{}
		}
		h.TimeSlots = marks
	}

	affectsSlots := creating || timesChanged || openChanged || blockedChanged
	return h, affectsSlots, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
