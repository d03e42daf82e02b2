package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ResolverMetrics contains Prometheus metrics for the species resolution cascade.
type ResolverMetrics struct {
	registry *prometheus.Registry

	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	tierResultsTotal   *prometheus.CounterVec

	cacheHitsTotal    *prometheus.CounterVec
	cacheMissesTotal  *prometheus.CounterVec
	cacheEvictedTotal *prometheus.CounterVec
	cacheEntriesGauge *prometheus.GaugeVec

	selectionsTotal *prometheus.CounterVec
}

// NewResolverMetrics creates and registers new resolver metrics
func NewResolverMetrics(registry *prometheus.Registry) (*ResolverMetrics, error) {
	m := &ResolverMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ResolverMetrics) initMetrics() {
	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "species_resolutions_total",
			Help: "Total number of species resolutions by taxonomic class",
		},
		[]string{"class", "seeded_from"}, // seeded_from: cache, upstream, fallback
	)

	m.resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "species_resolution_duration_seconds",
			Help:    "Time taken by a full resolution cascade",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"class"},
	)

	m.tierResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "species_tier_results_total",
			Help: "Candidates contributed per cascade tier",
		},
		[]string{"tier"}, // cache, upstream-narrow, upstream-expanded, regional-fallback, global-fallback
	)

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "species_cache_hits_total",
			Help: "Total number of species cache hits",
		},
		[]string{"class"},
	)

	m.cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "species_cache_misses_total",
			Help: "Total number of species cache misses",
		},
		[]string{"class"},
	)

	m.cacheEvictedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "species_cache_evictions_total",
			Help: "Total number of cache entries evicted past the per-class bound",
		},
		[]string{"class"},
	)

	m.cacheEntriesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "species_cache_entries",
			Help: "Current number of cache entries per taxonomic class",
		},
		[]string{"class"},
	)

	m.selectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "species_selections_total",
			Help: "Total number of species selections by outcome",
		},
		[]string{"class", "outcome"}, // outcome: eligible, cooldown_lru
	)
}

// Describe implements the Collector interface
func (m *ResolverMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.resolutionsTotal.Describe(ch)
	m.resolutionDuration.Describe(ch)
	m.tierResultsTotal.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
	m.cacheMissesTotal.Describe(ch)
	m.cacheEvictedTotal.Describe(ch)
	m.cacheEntriesGauge.Describe(ch)
	m.selectionsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *ResolverMetrics) Collect(ch chan<- prometheus.Metric) {
	m.resolutionsTotal.Collect(ch)
	m.resolutionDuration.Collect(ch)
	m.tierResultsTotal.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
	m.cacheMissesTotal.Collect(ch)
	m.cacheEvictedTotal.Collect(ch)
	m.cacheEntriesGauge.Collect(ch)
	m.selectionsTotal.Collect(ch)
}

// RecordResolution records one completed resolution
func (m *ResolverMetrics) RecordResolution(class, seededFrom string, duration float64) {
	m.resolutionsTotal.WithLabelValues(class, seededFrom).Inc()
	m.resolutionDuration.WithLabelValues(class).Observe(duration)
}

// RecordTierResults records candidates contributed by a cascade tier
func (m *ResolverMetrics) RecordTierResults(tier string, count int) {
	m.tierResultsTotal.WithLabelValues(tier).Add(float64(count))
}

// RecordCacheHit records a cache hit for a class
func (m *ResolverMetrics) RecordCacheHit(class string) {
	m.cacheHitsTotal.WithLabelValues(class).Inc()
}

// RecordCacheMiss records a cache miss for a class
func (m *ResolverMetrics) RecordCacheMiss(class string) {
	m.cacheMissesTotal.WithLabelValues(class).Inc()
}

// RecordCacheEviction records an eviction for a class
func (m *ResolverMetrics) RecordCacheEviction(class string) {
	m.cacheEvictedTotal.WithLabelValues(class).Inc()
}

// UpdateCacheEntries sets the current entry count for a class
func (m *ResolverMetrics) UpdateCacheEntries(class string, count int) {
	m.cacheEntriesGauge.WithLabelValues(class).Set(float64(count))
}

// RecordSelection records a selection outcome
func (m *ResolverMetrics) RecordSelection(class, outcome string) {
	m.selectionsTotal.WithLabelValues(class, outcome).Inc()
}
