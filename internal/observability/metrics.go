package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the service.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
	TicketTransitions *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "helpdesk",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "helpdesk",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "helpdesk",
				Name:      "http_errors_total",
				Help:      "Failed HTTP requests by error code.",
			},
			[]string{"method", "route", "code"},
		),
		TicketTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "helpdesk",
				Subsystem: "tickets",
				Name:      "transitions_total",
				Help:      "Ticket lifecycle transitions by action and resulting status.",
			},
			[]string{"action", "status"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.ErrorsTotal, m.TicketTransitions)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(method, route, code).Inc()
}

// RecordTransition counts a persisted lifecycle change. n is the number of tickets moved.
func (m *Metrics) RecordTransition(action, status string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.TicketTransitions.WithLabelValues(action, status).Add(float64(n))
}
