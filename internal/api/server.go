package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/fhluo/xpic/internal/gallery"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/observability"
	"github.com/fhluo/xpic/internal/thumbcache"
	"github.com/fhluo/xpic/internal/wallpaper"
)

// Server is the HTTP server behind `xpic serve`.
type Server struct {
	echo       *echo.Echo
	config     *Config
	controller *Controller
	metrics    *observability.Metrics
	log        logger.Logger
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithServerMetrics instruments the server and mounts /metrics when enabled.
func WithServerMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithServerLogger sets the server logger.
func WithServerLogger(log logger.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// NewServer builds the echo instance, middleware and routes.
func NewServer(cfg *Config, refresher *gallery.Refresher, wallpapers *wallpaper.Client, thumbs *thumbcache.Cache, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{echo: echo.New(), config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Server.ReadTimeout = cfg.ReadTimeout
	s.echo.Server.WriteTimeout = cfg.WriteTimeout
	s.echo.Server.IdleTimeout = cfg.IdleTimeout

	s.setupMiddleware()

	s.controller = New(s.echo, refresher, wallpapers, thumbs,
		WithLogger(s.log),
		WithMetrics(s.metrics))

	if cfg.Metrics && s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: s.config.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	s.echo.Use(echomw.BodyLimit(s.config.BodyLimit))
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Controller returns the API controller.
func (s *Server) Controller() *Controller { return s.controller }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server listening", logger.String("listen", s.config.Listen))
		if err := s.echo.Start(s.config.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.controller.Shutdown()
		return err
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		return s.Shutdown()
	}
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// for background refreshes.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	err := s.echo.Shutdown(ctx)
	s.controller.Shutdown()
	return err
}
