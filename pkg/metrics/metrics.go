// Package metrics exposes the Prometheus collectors of the CampusConnect API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector and the registry they are registered on.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	applicationsSubmitted prometheus.Counter
	applicationsDecided   *prometheus.CounterVec
	listingsCreated       prometheus.Counter
	listingViews          prometheus.Counter
	messagesSent          prometheus.Counter
	wsClients             prometheus.Gauge
	rateLimited           *prometheus.CounterVec
}

type Option func(*Manager)

// WithNamespace overrides the "campusconnect" metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithBuckets sets the HTTP latency histogram buckets (seconds).
func WithBuckets(b []float64) Option {
	return func(m *Manager) { m.buckets = b }
}

// WithGoCollectors adds Go runtime and process collectors to the registry.
func WithGoCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "campusconnect",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	m.applicationsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "applications_submitted_total",
		Help:      "Applications created by candidates.",
	})

	m.applicationsDecided = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "applications_decided_total",
		Help:      "Poster decisions by resulting status.",
	}, []string{"status"})

	m.listingsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "listings_created_total",
		Help:      "Listings created by posters.",
	})

	m.listingViews = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "listing_views_total",
		Help:      "Listing detail views, owner views included.",
	})

	m.messagesSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "messages_sent_total",
		Help:      "Messages appended to threads.",
	})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ws",
		Name:      "clients",
		Help:      "Connected WebSocket clients.",
	})

	m.rateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by action.",
	}, []string{"action"})

	return m
}

func (m *Manager) ObserveHTTP(route, method, statusCode string, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

func (m *Manager) ApplicationSubmitted()          { m.applicationsSubmitted.Inc() }
func (m *Manager) ApplicationDecided(st string)   { m.applicationsDecided.WithLabelValues(st).Inc() }
func (m *Manager) ListingCreated()                { m.listingsCreated.Inc() }
func (m *Manager) ListingViewed()                 { m.listingViews.Inc() }
func (m *Manager) MessageSent()                   { m.messagesSent.Inc() }
func (m *Manager) WSClientConnected()             { m.wsClients.Inc() }
func (m *Manager) WSClientDisconnected()          { m.wsClients.Dec() }
func (m *Manager) RateLimited(action string)      { m.rateLimited.WithLabelValues(action).Inc() }
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
