// Package reconcile re-validates the reservations of a date after its
// operating-hours configuration changes, relocating or cancelling the
// ones that no longer fit.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"quicktable/internal/metrics"
	"quicktable/internal/models"
)

// Store is the document-store surface the reconciler needs.
type Store interface {
	ListActiveReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation) error
}

// HoursProvider resolves the hours record for a date; (nil, nil) when
// absent.
type HoursProvider interface {
	Get(ctx context.Context, date string) (*models.RestaurantHours, error)
}

// Notifier delivers reservation-status emails, fire-and-forget.
type Notifier interface {
	ReservationStatusChanged(ctx context.Context, r *models.Reservation) error
}

// Broadcaster emits realtime mutation events, fire-and-forget.
type Broadcaster interface {
	PublishJSON(eventType string, payload any) error
}

// Summary reports what one reconciliation pass did.
type Summary struct {
	Date      string `json:"date"`
	Checked   int    `json:"checked"`
	Relocated int    `json:"relocated"`
	Cancelled int    `json:"cancelled"`
	Failed    int    `json:"failed"`
}

// Reconciler repairs reservations after hours changes. The pass is
// best-effort and per-reservation: a failed update is logged and the
// batch continues, so a crash mid-batch leaves a partially reconciled
// date for the next run to finish.
type Reconciler struct {
	store    Store
	hours    HoursProvider
	notifier Notifier
	bus      Broadcaster
	logger   zerolog.Logger
}

// New creates a reconciler.
func New(store Store, hours HoursProvider, notifier Notifier, bus Broadcaster, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		hours:    hours,
		notifier: notifier,
		bus:      bus,
		logger:   logger.With().Str("component", "reconcile").Logger(),
	}
}

// ReconcileDate re-evaluates every active reservation on the date
// against the authoritative slot set (new time slots minus new blocked
// ranges). Reservations whose hour dropped out are moved to the nearest
// available slot, or cancelled when none exists.
func (rc *Reconciler) ReconcileDate(ctx context.Context, date string) (Summary, error) {
	summary := Summary{Date: date}

	if !models.ValidDate(date) {
		return summary, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	h, err := rc.hours.Get(ctx, date)
	if err != nil {
		return summary, fmt.Errorf("get hours: %w", err)
	}
	if h == nil {
		// No explicit record: the date runs on default hours and nothing
		// changed underneath the reservations.
		return summary, nil
	}

	var available []string
	if h.IsOpen {
		available = h.AvailableSlots()
	}

	reservations, err := rc.store.ListActiveReservationsByDate(ctx, date)
	if err != nil {
		return summary, fmt.Errorf("list reservations: %w", err)
	}

	for i := range reservations {
		r := &reservations[i]
		if r.Status != models.StatusPending && r.Status != models.StatusAccepted {
			continue
		}
		summary.Checked++

		if slotAvailable(available, r.ReservationHour) {
			continue
		}

		target, ok := nearestSlot(available, r.ReservationHour)
		if ok {
			oldHour := r.ReservationHour
			r.Relocate(target)
			r.AppendNote(fmt.Sprintf("Moved from %s to %s after the operating hours for %s changed.", oldHour, target, date))
			if err := rc.store.UpdateReservation(ctx, r); err != nil {
				summary.Failed++
				rc.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("relocation update failed")
				continue
			}
			summary.Relocated++
			metrics.IncReconciled("relocated")
			rc.logger.Info().
				Str("reservation_id", r.ID).
				Str("from", oldHour).
				Str("to", target).
				Msg("reservation relocated")
			rc.fanout(ctx, "reservation.relocated", r)
			continue
		}

		if err := r.SetStatus(models.StatusCancelled); err != nil {
			summary.Failed++
			rc.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("cancel transition failed")
			continue
		}
		r.AppendNote(fmt.Sprintf("Cancelled: no available slot remains on %s after the operating hours changed.", date))
		if err := rc.store.UpdateReservation(ctx, r); err != nil {
			summary.Failed++
			rc.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("cancellation update failed")
			continue
		}
		summary.Cancelled++
		metrics.IncReconciled("cancelled")
		rc.logger.Info().
			Str("reservation_id", r.ID).
			Str("hour", r.ReservationHour).
			Msg("reservation cancelled by reconciliation")
		rc.fanout(ctx, "reservation.cancelled", r)
	}

	rc.logger.Info().
		Str("date", date).
		Int("checked", summary.Checked).
		Int("relocated", summary.Relocated).
		Int("cancelled", summary.Cancelled).
		Int("failed", summary.Failed).
		Msg("reconciliation pass complete")

	return summary, nil
}

func (rc *Reconciler) fanout(ctx context.Context, eventType string, r *models.Reservation) {
	if rc.notifier != nil {
		if err := rc.notifier.ReservationStatusChanged(ctx, r); err != nil {
			rc.logger.Warn().Err(err).Str("reservation_id", r.ID).Msg("notification failed")
		}
	}
	if rc.bus != nil {
		if err := rc.bus.PublishJSON(eventType, r); err != nil {
			rc.logger.Warn().Err(err).Str("event", eventType).Msg("broadcast failed")
		}
	}
}

func slotAvailable(available []string, hour string) bool {
	for _, s := range available {
		if s == hour {
			return true
		}
	}
	return false
}

// nearestSlot picks the available slot with minimum absolute minute
// distance to hour. Ties resolve to the first slot in list order.
func nearestSlot(available []string, hour string) (string, bool) {
	origin, err := models.ParseClock(hour)
	if err != nil {
		return "", false
	}

	best := ""
	bestDist := -1
	for _, s := range available {
		minute, err := models.ParseClock(s)
		if err != nil {
			continue
		}
		dist := minute - origin
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = s
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}
