// Package notify is the reservation-status notification collaborator.
// Delivery is owned by an external mail service; this package provides
// the seam plus throttling so a burst of reconciliations cannot flood it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"quicktable/internal/models"
)

// Notifier delivers a reservation-status notification.
type Notifier interface {
	ReservationStatusChanged(ctx context.Context, r *models.Reservation) error
}

// Noop is a Notifier that does nothing.
type Noop struct{}

func (Noop) ReservationStatusChanged(context.Context, *models.Reservation) error { return nil }

// LogNotifier records the outbound notification. It stands in for the
// external email service during local runs and tests.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a logging notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) ReservationStatusChanged(_ context.Context, r *models.Reservation) error {
	n.logger.Info().
		Str("reservation_id", r.ID).
		Str("email", r.CustomerEmail).
		Str("status", r.Status).
		Str("time", r.ReservationTime).
		Msg("reservation status notification")
	return nil
}

// Throttled wraps a Notifier with a token-bucket limiter. Sends that
// cannot acquire a token within the wait budget are dropped; the caller
// already treats notification failure as non-fatal.
type Throttled struct {
	inner   Notifier
	limiter *rate.Limiter
	wait    time.Duration
}

// NewThrottled creates a throttled notifier allowing perSecond sends
// with the given burst.
func NewThrottled(inner Notifier, perSecond float64, burst int) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		wait:    2 * time.Second,
	}
}

func (t *Throttled) ReservationStatusChanged(ctx context.Context, r *models.Reservation) error {
	waitCtx, cancel := context.WithTimeout(ctx, t.wait)
	defer cancel()
	if err := t.limiter.Wait(waitCtx); err != nil {
		return fmt.Errorf("notification rate limit: %w", err)
	}
	return t.inner.ReservationStatusChanged(ctx, r)
}
