package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hebergement"

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_created_total",
			Help:      "Count of reservations created by status.",
		},
		[]string{"status"},
	)

	reservationTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transition_total",
			Help:      "Count of reservation status changes.",
		},
		[]string{"from", "to"},
	)

	reservationConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_conflict_total",
			Help:      "Count of reservations rejected because the room was taken in the meantime.",
		},
	)

	roomStatusChange = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_status_change_total",
			Help:      "Count of applied room status changes.",
		},
		[]string{"from", "to"},
	)

	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "availability_search_duration_seconds",
			Help:      "Time to resolve an availability search.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2},
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by route and status code.",
		},
		[]string{"route", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationTransition, reservationConflict,
			roomStatusChange, searchDuration, httpRequests)
	})
}

func IncReservationCreated(status string) {
	reservationCreated.WithLabelValues(status).Inc()
}

func IncReservationTransition(from, to string) {
	reservationTransition.WithLabelValues(from, to).Inc()
}

func IncReservationConflict() {
	reservationConflict.Inc()
}

func IncRoomStatusChange(from, to string) {
	roomStatusChange.WithLabelValues(from, to).Inc()
}

func ObserveSearch(d time.Duration) {
	searchDuration.Observe(d.Seconds())
}

func IncHTTPRequest(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
