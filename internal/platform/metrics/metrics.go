package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the service's Prometheus metrics
type Manager struct {
	Registry *prometheus.Registry

	CatalogLoadsTotal     *prometheus.CounterVec
	RejectedRowsTotal     *prometheus.CounterVec
	CatalogProducts       *prometheus.GaugeVec
	SearchesTotal         *prometheus.CounterVec
	SearchResults         *prometheus.HistogramVec
	MatchesPerGeneration  prometheus.Histogram
	MatchesDeletedTotal   prometheus.Counter
	InventoryChangesTotal *prometheus.CounterVec
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestLatency    *prometheus.HistogramVec
}

// NewManager creates and registers the metrics under namespace
func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	m := &Manager{
		Registry: registry,
		CatalogLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog snapshots built from the CSV source, by view.",
		}, []string{"view"}),
		RejectedRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_rejected_rows_total",
			Help:      "CSV rows dropped by validation, by view.",
		}, []string{"view"}),
		CatalogProducts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products in the latest snapshot, by view.",
		}, []string{"view"}),
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches performed, by mode.",
		}, []string{"mode"}),
		SearchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Result count per search, by mode.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"mode"}),
		MatchesPerGeneration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matches_generated",
			Help:      "Wishlist matches produced per generation.",
			Buckets:   []float64{0, 1, 3, 6, 10, 20},
		}),
		MatchesDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_deleted_total",
			Help:      "Matches hidden by the shopper.",
		}),
		InventoryChangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_changes_total",
			Help:      "Retail inventory additions and deletions.",
		}, []string{"action"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registry.MustRegister(
		m.CatalogLoadsTotal,
		m.RejectedRowsTotal,
		m.CatalogProducts,
		m.SearchesTotal,
		m.SearchResults,
		m.MatchesPerGeneration,
		m.MatchesDeletedTotal,
		m.InventoryChangesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// CatalogLoaded records a snapshot build
func (m *Manager) CatalogLoaded(view string, products, rejected int) {
	m.CatalogLoadsTotal.WithLabelValues(view).Inc()
	m.RejectedRowsTotal.WithLabelValues(view).Add(float64(rejected))
	m.CatalogProducts.WithLabelValues(view).Set(float64(products))
}

// SearchPerformed records a completed search
func (m *Manager) SearchPerformed(mode string, results int) {
	m.SearchesTotal.WithLabelValues(mode).Inc()
	m.SearchResults.WithLabelValues(mode).Observe(float64(results))
}

// MatchesGenerated records the size of a match generation
func (m *Manager) MatchesGenerated(count int) {
	m.MatchesPerGeneration.Observe(float64(count))
}

// MatchDeleted records a hidden match
func (m *Manager) MatchDeleted() {
	m.MatchesDeletedTotal.Inc()
}

// InventoryChanged records an inventory add or delete
func (m *Manager) InventoryChanged(action string) {
	m.InventoryChangesTotal.WithLabelValues(action).Inc()
}

// ObserveHTTP records one served request
func (m *Manager) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
