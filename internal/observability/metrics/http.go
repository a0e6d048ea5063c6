package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics covers outgoing upstream requests and requests served by the
// local API. A nil *HTTPMetrics records nothing.
type HTTPMetrics struct {
	registry *prometheus.Registry

	clientRequestsTotal   *prometheus.CounterVec
	clientRequestDuration *prometheus.HistogramVec

	serverRequestsTotal   *prometheus.CounterVec
	serverRequestDuration *prometheus.HistogramVec

	inflight sync.Map // *http.Request -> time.Time
}

// NewHTTPMetrics creates and registers new HTTP metrics
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() {
	m.clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xpic_upstream_requests_total",
			Help: "Outgoing HTTP requests by host and status code",
		},
		[]string{"host", "status_code"}, // status_code is "error" when no response arrived
	)
	m.clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xpic_upstream_request_duration_seconds",
			Help:    "Time until response headers for outgoing HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)
	m.serverRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xpic_api_requests_total",
			Help: "Requests served by the local API",
		},
		[]string{"method", "path", "status_code"},
	)
	m.serverRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xpic_api_request_duration_seconds",
			Help:    "Time taken to serve local API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

// BeforeRequest marks the start of an outgoing request. It matches the
// httpclient before-request hook.
func (m *HTTPMetrics) BeforeRequest(req *http.Request) {
	if m == nil {
		return
	}
	m.inflight.Store(req, time.Now())
}

// AfterResponse records an outgoing request. It matches the httpclient
// after-response hook.
func (m *HTTPMetrics) AfterResponse(req *http.Request, resp *http.Response, err error) {
	if m == nil {
		return
	}
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	host := req.URL.Host
	m.clientRequestsTotal.WithLabelValues(host, status).Inc()

	if v, ok := m.inflight.LoadAndDelete(req); ok {
		if start, ok := v.(time.Time); ok {
			m.clientRequestDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
		}
	}
}

// RecordServerRequest records a request served by the local API. path is
// the route template, not the raw URL.
func (m *HTTPMetrics) RecordServerRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.serverRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.serverRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Describe implements the prometheus.Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.clientRequestsTotal.Describe(ch)
	m.clientRequestDuration.Describe(ch)
	m.serverRequestsTotal.Describe(ch)
	m.serverRequestDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	m.clientRequestsTotal.Collect(ch)
	m.clientRequestDuration.Collect(ch)
	m.serverRequestsTotal.Collect(ch)
	m.serverRequestDuration.Collect(ch)
}
