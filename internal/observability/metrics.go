// Package observability wires the Prometheus collectors of xpic onto a
// dedicated registry and exposes them over HTTP.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fhluo/xpic/internal/httpclient"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry   *prometheus.Registry
	Gallery    *metrics.GalleryMetrics
	Thumbnails *metrics.ThumbnailCacheMetrics
	HTTP       *metrics.HTTPMetrics
}

// NewMetrics creates a registry with the xpic collectors plus the Go runtime
// and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	galleryMetrics, err := metrics.NewGalleryMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create gallery metrics: %w", err)
	}

	thumbnailMetrics, err := metrics.NewThumbnailCacheMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	return &Metrics{
		registry:   registry,
		Gallery:    galleryMetrics,
		Thumbnails: thumbnailMetrics,
		HTTP:       httpMetrics,
	}, nil
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentClient installs request hooks on c that feed the HTTP metrics.
func (m *Metrics) InstrumentClient(c *httpclient.Client) {
	c.SetBeforeRequestHook(m.HTTP.BeforeRequest)
	c.SetAfterResponseHook(m.HTTP.AfterResponse)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promLogger{log: logger.Global().Module("telemetry")},
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// promLogger forwards exposition errors to the telemetry module
type promLogger struct {
	log logger.Logger
}

func (l promLogger) Println(v ...any) {
	l.log.Error("metrics handler error", logger.String("detail", fmt.Sprint(v...)))
}
