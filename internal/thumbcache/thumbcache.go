// Package thumbcache stores downloaded thumbnails on disk, named by the
// SHA-256 of their URL, and serves later requests from there.
package thumbcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/observability/metrics"
	"github.com/fhluo/xpic/pkg/bing"
)

const (
	maxThumbnailSize = 64 << 20
	dirPermissions   = 0o755
	filePermissions  = 0o644
)

// Cache is a content-addressed thumbnail cache. It is safe for concurrent use.
type Cache struct {
	dir     string
	http    bing.Doer
	log     logger.Logger
	metrics *metrics.ThumbnailCacheMetrics

	inflight singleflight.Group
}

// New creates a Cache rooted at dir. log and m may be nil.
func New(dir string, doer bing.Doer, log logger.Logger, m *metrics.ThumbnailCacheMetrics) *Cache {
	if log == nil {
		log = logger.Discard()
	}
	return &Cache{
		dir:     dir,
		http:    doer,
		log:     log.Module("thumbcache"),
		metrics: m,
	}
}

// Key returns the hex SHA-256 of rawURL.
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Path returns where the thumbnail for rawURL is stored.
func (c *Cache) Path(rawURL string) string {
	return filepath.Join(c.dir, Key(rawURL))
}

// Fetch returns the bytes behind rawURL, from disk when cached and from the
// network otherwise. A failed cache write is logged and does not fail the
// call.
func (c *Cache) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	path := c.Path(rawURL)

	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a hash
	switch {
	case err == nil:
		c.metrics.IncrementCacheHits()
		return data, nil
	case !errors.Is(err, fs.ErrNotExist):
		c.log.Warn("unreadable cache entry, downloading again",
			logger.String("path", path), logger.Error(err))
	}
	c.metrics.IncrementCacheMisses()

	// concurrent misses for one URL share a download that no single caller can cancel
	ch := c.inflight.DoChan(path, func() (any, error) {
		return c.download(context.WithoutCancel(ctx), rawURL, path)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, errors.New(ctx.Err()).
			Category(errors.CategoryCancellation).
			Component("thumbcache").
			Context("url", rawURL).
			Build()
	}
}

func (c *Cache) download(ctx context.Context, rawURL, path string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryValidation).
			Component("thumbcache").
			Context("url", rawURL).
			Build()
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, errors.Newf("thumbnail request failed: %w", err).
			Category(errors.CategoryImageFetch).
			Component("thumbcache").
			NetworkContext(rawURL, 0).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("thumbnail request returned status %d", resp.StatusCode).
			Category(errors.CategoryImageFetch).
			Component("thumbcache").
			Context("status_code", resp.StatusCode).
			Context("url", rawURL).
			Build()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailSize))
	if err != nil {
		return nil, errors.Newf("failed to read thumbnail: %w", err).
			Category(errors.CategoryImageFetch).
			Component("thumbcache").
			Context("url", rawURL).
			Timing("download", time.Since(start)).
			Build()
	}
	c.metrics.ObserveDownload(len(data), time.Since(start).Seconds())

	if err := c.write(path, data); err != nil {
		c.metrics.IncrementWriteErrors()
		c.log.Warn("failed to cache thumbnail",
			logger.String("url", rawURL), logger.String("path", path), logger.Error(err))
	} else {
		c.log.Debug("cached thumbnail",
			logger.String("url", rawURL), logger.Int("bytes", len(data)))
	}

	return data, nil
}

// write stores data at path through a temporary file so readers never see a
// partial thumbnail.
func (c *Cache) write(path string, data []byte) error {
	if err := os.MkdirAll(c.dir, dirPermissions); err != nil {
		return errors.New(err).
			Category(errors.CategoryImageCache).
			Component("thumbcache").
			Priority(errors.PriorityLow).
			FileContext(c.dir).
			Build()
	}

	tmp, err := os.CreateTemp(c.dir, ".thumb-*")
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryImageCache).
			Component("thumbcache").
			Priority(errors.PriorityLow).
			FileContext(c.dir).
			Build()
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpName, filePermissions)
	}
	if werr == nil {
		werr = os.Rename(tmpName, path)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return errors.New(fmt.Errorf("failed to write %s: %w", path, werr)).
			Category(errors.CategoryImageCache).
			Component("thumbcache").
			Priority(errors.PriorityLow).
			FileContext(path).
			Build()
	}
	return nil
}
