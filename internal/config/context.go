// Package config assembles the runtime services shared by the CLI commands
// and the API server from loaded settings.
package config

import (
	"net/http"

	"github.com/fhluo/xpic/internal/buildinfo"
	"github.com/fhluo/xpic/internal/conf"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/gallery"
	"github.com/fhluo/xpic/internal/httpclient"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/observability"
	"github.com/fhluo/xpic/internal/thumbcache"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

// Context holds the settings and the services built from them.
// Services are nil until Setup succeeds.
type Context struct {
	Settings *conf.Settings
	Logger   logger.Logger

	// Transport replaces the pooled HTTP transport when set.
	Transport http.RoundTripper

	Metrics    *observability.Metrics
	HTTP       *httpclient.Client
	Wallpapers *wallpaper.Client
	Refresher  *gallery.Refresher
	Thumbnails *thumbcache.Cache

	central *logger.CentralLogger
}

// NewContext creates a Context for settings. log may be nil.
func NewContext(settings *conf.Settings, log logger.Logger) *Context {
	if log == nil {
		log = logger.Discard()
	}
	return &Context{Settings: settings, Logger: log}
}

// SetupLogging replaces Logger with a CentralLogger built from the logging
// settings and installs it as the global provider. Debug forces the default
// and console levels to debug.
func (c *Context) SetupLogging() error {
	if c.Settings == nil {
		return errors.Newf("settings not loaded").
			Category(errors.CategoryConfiguration).
			Component("configuration").
			Build()
	}

	cfg := c.Settings.Logging
	if c.Settings.Debug {
		cfg.DefaultLevel = string(logger.LogLevelDebug)
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = string(logger.LogLevelDebug)
			cfg.Console = &console
		}
	}

	central, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return err
	}

	if c.central != nil {
		_ = c.central.Close()
	}
	c.central = central
	c.Logger = central.Root()
	logger.SetGlobal(central)
	return nil
}

// Setup builds the HTTP client, the wallpaper client, the refresher and the
// thumbnail cache from the current settings. Commands call it after flags
// have been applied.
func (c *Context) Setup() error {
	s := c.Settings
	if s == nil {
		return errors.Newf("settings not loaded").
			Category(errors.CategoryConfiguration).
			Component("configuration").
			Build()
	}

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	userAgent := s.HTTP.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.Current().UserAgent()
	}

	hc := httpclient.New(&httpclient.Config{
		DefaultTimeout: s.HTTP.Timeout,
		UserAgent:      userAgent,
		Transport:      c.Transport,
	})
	m.InstrumentClient(hc)

	bc, err := bing.NewClient(hc, bing.WithBaseURL(s.Bing.BaseURL))
	if err != nil {
		hc.Close()
		return err
	}
	wallpapers := wallpaper.NewClient(bc, c.Logger)

	opts := []gallery.Option{
		gallery.WithThresholds(s.Refresh.MirrorThreshold, s.Refresh.APIThreshold),
		gallery.WithCacheTTL(s.Refresh.CacheTTL),
		gallery.WithLogger(c.Logger),
		gallery.WithMetrics(m.Gallery),
	}
	if s.Refresh.MirrorEnabled {
		opts = append(opts, gallery.WithMirror(gallery.NewMirror(hc, s.Refresh.MirrorURL, c.Logger)))
	}

	c.Metrics = m
	c.HTTP = hc
	c.Wallpapers = wallpapers
	c.Refresher = gallery.NewRefresher(
		gallery.NewAPISource(wallpapers, s.Refresh.Count, s.Refresh.UHD),
		s.Paths.DataDir,
		opts...)
	c.Thumbnails = thumbcache.New(s.Paths.CacheDir, hc, c.Logger, m.Thumbnails)
	return nil
}

// Downloader returns a bulk downloader limited by the HTTP settings.
func (c *Context) Downloader() *wallpaper.Downloader {
	return wallpaper.NewDownloader(c.Wallpapers, c.Settings.HTTP.RateLimit, c.Settings.HTTP.Concurrency, c.Logger)
}

// Close waits for background refreshes, releases idle connections and
// flushes the log file.
func (c *Context) Close() {
	if c.Refresher != nil {
		c.Refresher.Close()
	}
	if c.HTTP != nil {
		c.HTTP.Close()
	}
	if c.central != nil {
		_ = c.central.Close()
	}
}
