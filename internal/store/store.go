// Package store persists one JSON snapshot of images per market.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Path returns <dataDir>/<market>.json using the canonical market code.
func Path(dataDir string, market bing.Market) string {
	return filepath.Join(dataDir, market.Code()+".json")
}

// Load reads a snapshot. Callers usually treat any error as an empty cache.
func Load(path string) ([]wallpaper.Image, error) {
	start := time.Now()

	data, err := os.ReadFile(path) //nolint:gosec // path is built from the data dir and a known market
	if err != nil {
		category := errors.CategoryFileIO
		if os.IsNotExist(err) {
			category = errors.CategoryNotFound
		}
		return nil, errors.New(err).
			Category(category).
			Component("store").
			Context("operation", "load_snapshot").
			FileContext(path).
			Build()
	}

	var images []wallpaper.Image
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, errors.Newf("failed to decode snapshot: %w", err).
			Category(errors.CategoryFileParsing).
			Component("store").
			FileContext(path).
			Timing("load_snapshot", time.Since(start)).
			Build()
	}
	return images, nil
}

// Save writes images as indented JSON. The parent directory is created if
// possible; the data goes to a temp file that is renamed over path.
func Save(path string, images []wallpaper.Image) error {
	if images == nil {
		images = []wallpaper.Image{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(images); err != nil {
		return errors.Newf("failed to encode snapshot: %w", err).
			Category(errors.CategoryValidation).
			Component("store").
			FileContext(path).
			Build()
	}

	dir := filepath.Dir(path)
	// a failure here surfaces as a write error below
	_ = os.MkdirAll(dir, dirPermissions)

	if err := writeAtomic(dir, path, buf.Bytes()); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Component("store").
			Priority(errors.PriorityHigh).
			Context("operation", "save_snapshot").
			Context("images", len(images)).
			FileContext(path).
			Build()
	}
	return nil
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
