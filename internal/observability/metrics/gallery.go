package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GalleryMetrics tracks refresh runs, upstream fetches, snapshot writes and
// the in-memory image list cache. A nil *GalleryMetrics records nothing.
type GalleryMetrics struct {
	RefreshRuns      *prometheus.CounterVec
	SourceFetches    *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	SnapshotSaves    *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	CoalescedRefresh prometheus.Counter
	registry         *prometheus.Registry
}

// NewGalleryMetrics creates the collectors and registers them on registry.
func NewGalleryMetrics(registry *prometheus.Registry) (*GalleryMetrics, error) {
	m := &GalleryMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register gallery metrics: %w", err)
	}
	return m, nil
}

func (m *GalleryMetrics) initMetrics() {
	m.RefreshRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xpic_refresh_runs_total",
		Help: "Refresh results by market and outcome (updated, unchanged, canceled).",
	}, []string{"market", "outcome"})

	m.SourceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xpic_source_fetches_total",
		Help: "Upstream fetches by source (mirror, api) and outcome.",
	}, []string{"source", "outcome"})

	m.FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xpic_source_fetch_duration_seconds",
		Help:    "Duration of upstream fetches in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source"})

	m.SnapshotSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xpic_snapshot_saves_total",
		Help: "Snapshot writes by outcome.",
	}, []string{"outcome"})

	m.CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xpic_image_cache_lookups_total",
		Help: "In-memory image list lookups by result (hit, miss).",
	}, []string{"result"})

	m.CoalescedRefresh = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xpic_refresh_coalesced_total",
		Help: "Refresh requests that joined a run already in flight.",
	})
}

// RecordRefresh counts a finished refresh run.
func (m *GalleryMetrics) RecordRefresh(market, outcome string) {
	if m == nil {
		return
	}
	m.RefreshRuns.WithLabelValues(market, outcome).Inc()
}

// RecordSourceFetch counts an upstream fetch and observes its duration.
func (m *GalleryMetrics) RecordSourceFetch(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(source, outcome).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordSave counts a snapshot write.
func (m *GalleryMetrics) RecordSave(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.SnapshotSaves.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup counts an in-memory cache hit or miss.
func (m *GalleryMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// IncrementCoalesced counts a caller that shared another caller's run.
func (m *GalleryMetrics) IncrementCoalesced() {
	if m == nil {
		return
	}
	m.CoalescedRefresh.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *GalleryMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.RefreshRuns.Describe(ch)
	m.SourceFetches.Describe(ch)
	m.FetchDuration.Describe(ch)
	m.SnapshotSaves.Describe(ch)
	m.CacheLookups.Describe(ch)
	ch <- m.CoalescedRefresh.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *GalleryMetrics) Collect(ch chan<- prometheus.Metric) {
	m.RefreshRuns.Collect(ch)
	m.SourceFetches.Collect(ch)
	m.FetchDuration.Collect(ch)
	m.SnapshotSaves.Collect(ch)
	m.CacheLookups.Collect(ch)
	ch <- m.CoalescedRefresh
}
