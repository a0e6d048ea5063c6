package gallery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

// DefaultMirrorURL is the community snapshot; {market} is replaced by the market code.
const DefaultMirrorURL = "https://raw.githubusercontent.com/fhluo/xpic/main/data/{market}.json"

const maxMirrorSize = 32 << 20

// Source supplies images for a market.
type Source interface {
	Fetch(ctx context.Context, market bing.Market) ([]wallpaper.Image, error)
}

// APISource lists the live archive through a wallpaper client.
type APISource struct {
	client *wallpaper.Client
	number int
	uhd    bool
}

// NewAPISource requests number images per fetch. Non-positive numbers use bing.DefaultNumber.
func NewAPISource(client *wallpaper.Client, number int, uhd bool) *APISource {
	if number <= 0 {
		number = bing.DefaultNumber
	}
	return &APISource{client: client, number: number, uhd: uhd}
}

// Fetch lists the latest images for market.
func (s *APISource) Fetch(ctx context.Context, market bing.Market) ([]wallpaper.Image, error) {
	return s.client.ListImages(ctx, bing.NewQuery(
		bing.WithMarket(market),
		bing.WithNumber(s.number),
		bing.WithUHD(s.uhd),
	))
}

// Mirror downloads a market's full history from a static JSON file in the
// same format as the local snapshot.
type Mirror struct {
	http        bing.Doer
	urlTemplate string
	log         logger.Logger
}

// NewMirror uses DefaultMirrorURL when urlTemplate is empty. log may be nil.
func NewMirror(doer bing.Doer, urlTemplate string, log logger.Logger) *Mirror {
	if urlTemplate == "" {
		urlTemplate = DefaultMirrorURL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Mirror{http: doer, urlTemplate: urlTemplate, log: log.Module("gallery").Module("mirror")}
}

// URL returns the mirror file location for market.
func (m *Mirror) URL(market bing.Market) string {
	return strings.ReplaceAll(m.urlTemplate, "{market}", market.Code())
}

// Fetch downloads and decodes the mirror file for market.
func (m *Mirror) Fetch(ctx context.Context, market bing.Market) ([]wallpaper.Image, error) {
	u := m.URL(market)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, errors.Newf("failed to create mirror request: %w", err).
			Category(errors.CategoryConfiguration).
			Component("gallery").
			Context("url", u).
			Build()
	}

	resp, err := m.http.Do(ctx, req)
	if err != nil {
		return nil, errors.Newf("mirror request failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("gallery").
			Context("operation", "fetch_mirror").
			NetworkContext(u, 0).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("mirror returned status %d", resp.StatusCode).
			Category(errors.CategoryHTTP).
			Component("gallery").
			Context("operation", "fetch_mirror").
			Context("status_code", resp.StatusCode).
			Context("market", market.Code()).
			Build()
	}

	var images []wallpaper.Image
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMirrorSize)).Decode(&images); err != nil {
		return nil, errors.Newf("failed to decode mirror snapshot: %w", err).
			Category(errors.CategoryFileParsing).
			Component("gallery").
			Context("market", market.Code()).
			Timing("fetch_mirror", time.Since(start)).
			Build()
	}

	// records without an id cannot be deduplicated
	total := len(images)
	images = slices.DeleteFunc(images, func(img wallpaper.Image) bool { return img.ID == "" })
	if dropped := total - len(images); dropped > 0 {
		m.log.Warn("dropping mirror records without id",
			logger.Int("dropped", dropped),
			logger.Int("kept", len(images)),
			logger.String("market", market.Code()))
	}
	return images, nil
}
