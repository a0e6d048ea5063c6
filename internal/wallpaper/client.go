package wallpaper

import (
	"context"
	"net/http"

	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

// Client fetches images from the archive and normalizes them.
type Client struct {
	bing *bing.Client
	log  logger.Logger
}

// NewClient wraps bc. A nil log discards output.
func NewClient(bc *bing.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{bing: bc, log: log.Module("wallpaper")}
}

// Bing returns the underlying wire client.
func (c *Client) Bing() *bing.Client { return c.bing }

// ListImages fetches the archive and normalizes each record. Records with a
// bad url or without an id are logged and dropped; the rest are returned.
func (c *Client) ListImages(ctx context.Context, q bing.Query) ([]Image, error) {
	resp, err := c.bing.HPImageArchive(ctx, q)
	if err != nil {
		return nil, err
	}

	base := c.bing.BaseURL()
	images := make([]Image, 0, len(resp.Images))
	for i := range resp.Images {
		img, err := FromRaw(base, &resp.Images[i])
		if err != nil {
			c.log.Warn("dropping malformed image record",
				logger.Error(err),
				logger.Int("index", i),
				logger.String("full_start_date", resp.Images[i].FullStartDate),
				logger.String("market", q.Market.Code()))
			continue
		}
		images = append(images, img)
	}

	c.log.Debug("listed images",
		logger.String("market", q.Market.Code()),
		logger.Int("received", len(resp.Images)),
		logger.Int("kept", len(images)))

	return images, nil
}

// FetchThumbnail requests an image from /th. The caller owns the body.
func (c *Client) FetchThumbnail(ctx context.Context, q bing.ThumbnailQuery) (*http.Response, error) {
	return c.bing.Thumbnail(ctx, q)
}

// FetchImage requests the full-size image for id.
func (c *Client) FetchImage(ctx context.Context, id string) (*http.Response, error) {
	return c.bing.Thumbnail(ctx, bing.ThumbnailQuery{ID: id})
}

// ThumbnailURL returns the /th URL for q on the configured host.
func (c *Client) ThumbnailURL(q bing.ThumbnailQuery) (string, error) {
	return c.bing.ThumbnailURL(q)
}
