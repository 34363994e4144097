package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicktable",
			Name:      "reservation_created_total",
			Help:      "Count of reservation creation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	reservationStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicktable",
			Name:      "reservation_status_total",
			Help:      "Count of reservation status transitions.",
		},
		[]string{"status"},
	)

	reconciled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicktable",
			Name:      "reconciled_reservations_total",
			Help:      "Count of reservations repaired by reconciliation passes.",
		},
		[]string{"action"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicktable",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationStatus, reconciled, httpRequests)
	})
}

func IncReservationCreated(outcome string) {
	reservationCreated.WithLabelValues(outcome).Inc()
}

func IncReservationStatus(status string) {
	reservationStatus.WithLabelValues(status).Inc()
}

func IncReconciled(action string) {
	reconciled.WithLabelValues(action).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
