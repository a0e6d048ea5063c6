package thumbcache

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/httpclient"
	"github.com/fhluo/xpic/internal/observability/metrics"
)

const thumbURL = "https://www.bing.com/th?id=OHR.HalfDomeYosemite_EN-US4890007214_UHD.jpg&pid=hp&w=200&h=200&p=0&c=7"

func newTestCache(t *testing.T, dir string) (*Cache, *httpmock.MockTransport, *metrics.ThumbnailCacheMetrics) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	hc := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(hc.Close)

	m, err := metrics.NewThumbnailCacheMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return New(dir, hc, nil, m), transport, m
}

func TestKey(t *testing.T) {
	t.Parallel()

	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Key("abc"))
	assert.Len(t, Key(thumbURL), 64)
	assert.NotEqual(t, Key(thumbURL), Key(thumbURL+"&x=1"))
}

func TestPath(t *testing.T) {
	t.Parallel()

	c := New("cache", nil, nil, nil)
	assert.Equal(t, filepath.Join("cache", Key(thumbURL)), c.Path(thumbURL))
	assert.Equal(t, "cache", c.Dir())
}

func TestFetch_MissThenHit(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "thumbs")
	c, transport, m := newTestCache(t, dir)
	transport.RegisterResponder(http.MethodGet, thumbURL,
		httpmock.NewBytesResponder(http.StatusOK, []byte("jpeg-bytes")))

	data, err := c.Fetch(t.Context(), thumbURL)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	onDisk, err := os.ReadFile(c.Path(thumbURL))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(onDisk))

	data, err = c.Fetch(t.Context(), thumbURL)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	assert.Equal(t, 1, transport.GetTotalCallCount(), "second fetch is served from disk")
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheHits), 0)
	assert.InDelta(t, len("jpeg-bytes"), testutil.ToFloat64(m.DownloadedBytes), 0)
}

func TestFetch_PrefersExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, transport, _ := newTestCache(t, dir)
	require.NoError(t, os.WriteFile(c.Path(thumbURL), []byte("cached"), 0o600))

	data, err := c.Fetch(t.Context(), thumbURL)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestFetch_WriteFailureStillReturnsBytes(t *testing.T) {
	t.Parallel()

	// a regular file where the cache directory should be
	blocker := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	c, transport, m := newTestCache(t, blocker)
	transport.RegisterResponder(http.MethodGet, thumbURL,
		httpmock.NewBytesResponder(http.StatusOK, []byte("jpeg-bytes")))

	data, err := c.Fetch(t.Context(), thumbURL)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheWriteErrors), 0)

	err = c.write(c.Path(thumbURL), data)
	var ee *xerrors.EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, xerrors.CategoryImageCache, ee.Category)
	assert.Equal(t, xerrors.PriorityLow, ee.GetPriority())
}

func TestFetch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"status", httpmock.NewStringResponder(http.StatusNotFound, "")},
		{"transport", httpmock.NewErrorResponder(errors.New("connection refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			c, transport, _ := newTestCache(t, dir)
			transport.RegisterResponder(http.MethodGet, thumbURL, tt.responder)

			data, err := c.Fetch(t.Context(), thumbURL)
			require.Error(t, err)
			assert.Nil(t, data)
			assert.True(t, xerrors.IsCategory(err, xerrors.CategoryImageFetch))

			_, statErr := os.Stat(c.Path(thumbURL))
			assert.True(t, os.IsNotExist(statErr), "failures are not cached")
		})
	}
}

func TestFetch_SharedDownloadOutlivesCanceledCaller(t *testing.T) {
	t.Parallel()

	c, transport, _ := newTestCache(t, t.TempDir())
	started := make(chan struct{})
	gate := make(chan struct{})
	transport.RegisterResponder(http.MethodGet, thumbURL, func(req *http.Request) (*http.Response, error) {
		close(started)
		<-gate
		return httpmock.NewBytesResponse(http.StatusOK, []byte("jpeg-bytes")), nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	first := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, thumbURL)
		first <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "download did not start")
	}

	cancel()
	err := <-first
	require.Error(t, err)
	assert.True(t, xerrors.IsCategory(err, xerrors.CategoryCancellation))

	close(gate)
	require.Eventually(t, func() bool {
		_, err := os.Stat(c.Path(thumbURL))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "download stopped with its caller")

	data, err := c.Fetch(t.Context(), thumbURL)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, 1, transport.GetTotalCallCount(), "the canceled caller's download was cached")
}
