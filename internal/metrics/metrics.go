package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carrental",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carrental",
			Name:      "booking_events_total",
			Help:      "Booking lifecycle transitions by event type.",
		},
		[]string{"event"},
	)

	acquireConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "carrental",
			Name:      "car_acquire_conflicts_total",
			Help:      "Reservation attempts rejected because the car was already held.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingEvents, acquireConflicts)
	})
}

// IncHTTP increments the request counter for a route pattern and status code.
func IncHTTP(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// IncBookingEvent counts one booking lifecycle event.
func IncBookingEvent(event string) {
	bookingEvents.WithLabelValues(event).Inc()
}

func IncAcquireConflict() {
	acquireConflicts.Inc()
}
