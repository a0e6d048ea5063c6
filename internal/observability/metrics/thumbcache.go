package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ThumbnailCacheMetrics contains the metrics of the on-disk thumbnail cache.
// A nil *ThumbnailCacheMetrics records nothing.
type ThumbnailCacheMetrics struct {
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheWriteErrors prometheus.Counter
	DownloadedBytes  prometheus.Counter
	DownloadDuration prometheus.Histogram
	registry         *prometheus.Registry
}

// NewThumbnailCacheMetrics creates the collectors and registers them on registry.
func NewThumbnailCacheMetrics(registry *prometheus.Registry) (*ThumbnailCacheMetrics, error) {
	m := &ThumbnailCacheMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register thumbnail cache metrics: %w", err)
	}
	return m, nil
}

func (m *ThumbnailCacheMetrics) initMetrics() {
	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xpic_thumbnail_cache_hits_total",
		Help: "Thumbnails served from the cache directory.",
	})
	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xpic_thumbnail_cache_misses_total",
		Help: "Thumbnails that had to be downloaded.",
	})
	m.CacheWriteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xpic_thumbnail_cache_write_errors_total",
		Help: "Downloaded thumbnails that could not be written to the cache.",
	})
	m.DownloadedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xpic_thumbnail_downloaded_bytes_total",
		Help: "Bytes downloaded for thumbnail cache misses.",
	})
	m.DownloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "xpic_thumbnail_download_duration_seconds",
		Help:    "Duration of thumbnail downloads in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
}

// IncrementCacheHits increases the cache hit counter by one.
func (m *ThumbnailCacheMetrics) IncrementCacheHits() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncrementCacheMisses increases the cache miss counter by one.
func (m *ThumbnailCacheMetrics) IncrementCacheMisses() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// IncrementWriteErrors increases the cache write error counter by one.
func (m *ThumbnailCacheMetrics) IncrementWriteErrors() {
	if m == nil {
		return
	}
	m.CacheWriteErrors.Inc()
}

// ObserveDownload records a completed download of n bytes.
func (m *ThumbnailCacheMetrics) ObserveDownload(n int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.DownloadedBytes.Add(float64(n))
	m.DownloadDuration.Observe(durationSeconds)
}

// Collect implements the prometheus.Collector interface.
func (m *ThumbnailCacheMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.CacheHits
	ch <- m.CacheMisses
	ch <- m.CacheWriteErrors
	ch <- m.DownloadedBytes
	ch <- m.DownloadDuration
}

// Describe implements the prometheus.Collector interface.
func (m *ThumbnailCacheMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.CacheHits.Desc()
	ch <- m.CacheMisses.Desc()
	ch <- m.CacheWriteErrors.Desc()
	ch <- m.DownloadedBytes.Desc()
	ch <- m.DownloadDuration.Desc()
}
