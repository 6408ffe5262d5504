// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the prometheus instruments for catalog traffic,
// stale-response suppression and bookshelf writes.
//
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry and the instruments registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	CatalogRequests *prometheus.CounterVec
	CatalogDuration *prometheus.HistogramVec
	StaleResponses  *prometheus.CounterVec
	ShelfWrites     *prometheus.CounterVec
}

// New creates a fresh registry with all instruments registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CatalogRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "book_nook_catalog_requests_total",
			Help: "Total number of catalog requests by operation and outcome",
		}, []string{"op", "outcome"}),
		CatalogDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "book_nook_catalog_request_duration_seconds",
			Help:    "Duration of catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		StaleResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "book_nook_stale_responses_total",
			Help: "Responses discarded because a newer request superseded them",
		}, []string{"flow"}),
		ShelfWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "book_nook_shelf_writes_total",
			Help: "Bookshelf snapshot writes by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveCatalog records one catalog request.
func (m *Metrics) ObserveCatalog(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CatalogRequests.WithLabelValues(op, outcome).Inc()
	m.CatalogDuration.WithLabelValues(op).Observe(d.Seconds())
}

// StaleDiscarded records a response dropped by a generation check.
func (m *Metrics) StaleDiscarded(flow string) {
	if m == nil {
		return
	}
	m.StaleResponses.WithLabelValues(flow).Inc()
}

// ShelfWrite records a bookshelf snapshot write.
func (m *Metrics) ShelfWrite(outcome string) {
	if m == nil {
		return
	}
	m.ShelfWrites.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
