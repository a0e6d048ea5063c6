package wallpaper

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
)

const (
	// DefaultDownloadRate is the request rate used when none is configured.
	DefaultDownloadRate = 4
	// DefaultDownloadConcurrency bounds parallel downloads.
	DefaultDownloadConcurrency = 4

	fileMode = 0o644
	dirMode  = 0o755
)

// Downloader saves full-size images to a directory.
type Downloader struct {
	client      *Client
	limiter     *rate.Limiter
	concurrency int
	log         logger.Logger
}

// DownloadReport summarizes a SaveAll run. Failed is keyed by image id.
type DownloadReport struct {
	Saved   []string
	Skipped []string
	Failed  map[string]error
}

// NewDownloader limits requests to perSecond and runs at most concurrency
// downloads at once. Non-positive values use the defaults.
func NewDownloader(client *Client, perSecond float64, concurrency int, log logger.Logger) *Downloader {
	if perSecond <= 0 {
		perSecond = DefaultDownloadRate
	}
	if concurrency <= 0 {
		concurrency = DefaultDownloadConcurrency
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Downloader{
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), 1),
		concurrency: concurrency,
		log:         log.Module("wallpaper.download"),
	}
}

// SaveAll writes each image to dir/<id>, skipping files that already exist.
// A failed image does not stop the others; only a canceled context or an
// unusable dir returns an error.
func (d *Downloader) SaveAll(ctx context.Context, images []Image, dir string) (*DownloadReport, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("wallpaper").
			Context("operation", "create_download_dir").
			FileContext(dir).
			Build()
	}

	report := &DownloadReport{Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i := range images {
		img := images[i]
		g.Go(func() error {
			saved, err := d.save(gctx, &img, dir)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if gctx.Err() != nil {
					return gctx.Err()
				}
				report.Failed[img.ID] = err
				d.log.Warn("download failed", logger.String("id", img.ID), logger.Error(err))
			case saved:
				report.Saved = append(report.Saved, img.ID)
			default:
				report.Skipped = append(report.Skipped, img.ID)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	d.log.Info("download finished",
		logger.Int("saved", len(report.Saved)),
		logger.Int("skipped", len(report.Skipped)),
		logger.Int("failed", len(report.Failed)))
	return report, nil
}

// save reports false when the file was already present.
func (d *Downloader) save(ctx context.Context, img *Image, dir string) (bool, error) {
	if img.ID == "" || img.ID != filepath.Base(img.ID) || img.ID == "." || img.ID == ".." {
		return false, errors.Newf("image id %q is not a valid file name", img.ID).
			Category(errors.CategoryValidation).
			Component("wallpaper").
			Build()
	}

	dst := filepath.Join(dir, img.ID)
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return false, err
	}

	start := time.Now()
	resp, err := d.client.Bing().Fetch(ctx, img.URL)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := writeFileAtomic(dst, resp.Body); err != nil {
		return false, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("wallpaper").
			FileContext(dst).
			Timing("save_image", time.Since(start)).
			Build()
	}
	return true, nil
}

// writeFileAtomic streams r to a temp file next to dst and renames it into place.
func writeFileAtomic(dst string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
