package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewGalleryMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordRefresh("en-US", RefreshUpdated)
	m.RecordRefresh("en-US", RefreshUpdated)
	m.RecordRefresh("de-DE", RefreshUnchanged)
	m.RecordSourceFetch(SourceMirror, OutcomeEmpty, 10*time.Millisecond)
	m.RecordSourceFetch(SourceAPI, OutcomeSuccess, 20*time.Millisecond)
	m.RecordSave(nil)
	m.RecordSave(errors.New("disk full"))
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.IncrementCoalesced()

	assert.InDelta(t, 2, testutil.ToFloat64(m.RefreshRuns.WithLabelValues("en-US", RefreshUpdated)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RefreshRuns.WithLabelValues("de-DE", RefreshUnchanged)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues(SourceMirror, OutcomeEmpty)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotSaves.WithLabelValues(OutcomeError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotSaves.WithLabelValues(OutcomeSuccess)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CoalescedRefresh), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.FetchDuration))
}

func TestThumbnailCacheMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewThumbnailCacheMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.IncrementCacheHits()
	m.IncrementCacheMisses()
	m.IncrementWriteErrors()
	m.ObserveDownload(2048, 0.5)

	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheHits), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheWriteErrors), 0)
	assert.InDelta(t, 2048, testutil.ToFloat64(m.DownloadedBytes), 0)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewGalleryMetrics(registry)
	require.NoError(t, err)
	_, err = NewGalleryMetrics(registry)
	require.Error(t, err)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	t.Parallel()

	var g *GalleryMetrics
	var th *ThumbnailCacheMetrics
	var h *HTTPMetrics

	assert.NotPanics(t, func() {
		g.RecordRefresh("en-US", RefreshUpdated)
		g.RecordSourceFetch(SourceAPI, OutcomeError, time.Second)
		g.RecordSave(nil)
		g.RecordCacheLookup(true)
		g.IncrementCoalesced()
		th.IncrementCacheHits()
		th.IncrementCacheMisses()
		th.IncrementWriteErrors()
		th.ObserveDownload(1, 1)
		h.BeforeRequest(nil)
		h.AfterResponse(nil, nil, nil)
		h.RecordServerRequest("GET", "/", 200, time.Second)
	})
}

func TestHTTPMetrics_ServerRequests(t *testing.T) {
	t.Parallel()

	m, err := NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordServerRequest("GET", "/api/v1/markets", 200, 5*time.Millisecond)
	m.RecordServerRequest("GET", "/api/v1/markets", 200, 5*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.serverRequestsTotal.WithLabelValues("GET", "/api/v1/markets", "200")), 0)
}
