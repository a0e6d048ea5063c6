package bing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fhluo/xpic/internal/errors"
)

// maxResponseSize caps how much of an archive response is decoded
const maxResponseSize = 4 << 20

// Doer sends HTTP requests. *httpclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type stdDoer struct{ client *http.Client }

func (d stdDoer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return d.client.Do(req.WithContext(ctx))
}

// Client talks to the archive and thumbnail endpoints.
type Client struct {
	http    Doer
	baseURL *url.URL
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at another host, e.g. a regional mirror.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return errors.Newf("invalid base url %q: %w", raw, err).
				Category(errors.CategoryConfiguration).
				Component("bing").
				Build()
		}
		if !u.IsAbs() {
			return errors.Newf("base url %q is not absolute", raw).
				Category(errors.CategoryConfiguration).
				Component("bing").
				Build()
		}
		if u.Path == "" {
			u.Path = "/"
		}
		c.baseURL = u
		return nil
	}
}

// NewClient creates a client that sends requests through doer. A nil doer
// uses a plain http.Client with a 30 second timeout.
func NewClient(doer Doer, opts ...Option) (*Client, error) {
	if doer == nil {
		doer = stdDoer{client: &http.Client{Timeout: 30 * time.Second}}
	}
	base, _ := url.Parse(BaseURL)
	c := &Client{http: doer, baseURL: base}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns a copy of the URL relative links are resolved against.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

// ArchiveURL returns the full archive request URL for q.
func (c *Client) ArchiveURL(q Query) string {
	return c.endpoint(hpImageArchivePath) + "?" + q.Encode()
}

// ThumbnailURL returns the /th URL for q on this client's host.
func (c *Client) ThumbnailURL(q ThumbnailQuery) (string, error) {
	return q.BuildURL(c.endpoint(thumbnailPath))
}

// HPImageArchive fetches and decodes the image list for q. Only FormatJSON
// responses can be decoded.
func (c *Client) HPImageArchive(ctx context.Context, q Query) (*Response, error) {
	if q.Format != "" && q.Format != FormatJSON {
		return nil, errors.Newf("cannot decode %s responses", q.Format).
			Category(errors.CategoryValidation).
			Component("bing").
			Context("format", string(q.Format)).
			Build()
	}

	reqURL := c.ArchiveURL(q)
	start := time.Now()

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, errors.Newf("failed to decode image archive response: %w", err).
			Category(errors.CategoryFileParsing).
			Component("bing").
			Context("url", reqURL).
			Timing("hp_image_archive", time.Since(start)).
			Build()
	}
	return &out, nil
}

// Thumbnail requests an image from /th. The caller owns the returned body.
func (c *Client) Thumbnail(ctx context.Context, q ThumbnailQuery) (*http.Response, error) {
	reqURL, err := c.ThumbnailURL(q)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryValidation).
			Component("bing").
			Context("id", q.ID).
			Build()
	}
	return c.get(ctx, reqURL)
}

// Fetch GETs an absolute URL, typically Image.URL from a normalized record.
// The caller owns the returned body.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.get(ctx, rawURL)
}

// get issues a GET and turns transport failures and non-2xx statuses into errors.
func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryValidation).
			Component("bing").
			Context("url", reqURL).
			Build()
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("bing").
			Context("url", reqURL).
			Build()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, errors.New(&StatusError{StatusCode: resp.StatusCode, URL: reqURL}).
			Category(errors.CategoryHTTP).
			Component("bing").
			Context("url", reqURL).
			Context("status_code", resp.StatusCode).
			Build()
	}
	return resp, nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s from %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}
