package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll outcomes recorded per tick.
const (
	PollIssued    = "issued"
	PollSkipped   = "skipped"
	PollFailed    = "failed"
	PollDiscarded = "discarded"
)

// Metrics holds the client counters on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	polls    *prometheus.CounterVec
	portal   *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalmotion",
			Name:      "backend_requests_total",
			Help:      "Backend requests by method, status and outcome.",
		}, []string{"method", "status", "outcome"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalmotion",
			Name:      "poll_ticks_total",
			Help:      "Polling ticks by resource kind and outcome.",
		}, []string{"kind", "outcome"}),
		portal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalmotion",
			Name:      "portal_requests_total",
			Help:      "Local portal requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalmotion",
			Name:      "portal_errors_total",
			Help:      "Local portal error responses by route, method and code.",
		}, []string{"route", "method", "code"}),
	}
	m.Registry.MustRegister(m.requests, m.polls, m.portal, m.errors)
	return m
}

// RecordRequest counts one backend exchange. status is 0 when no response arrived.
func (m *Metrics) RecordRequest(method string, status int, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status), outcome).Inc()
}

// RecordPoll counts one polling tick outcome.
func (m *Metrics) RecordPoll(kind, outcome string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(kind, outcome).Inc()
}

// RecordPortal counts one portal request.
func (m *Metrics) RecordPortal(route, method string, status int) {
	if m == nil {
		return
	}
	m.portal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// RecordError counts one portal error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}
