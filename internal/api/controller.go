package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fhluo/xpic/internal/buildinfo"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/gallery"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/observability"
	"github.com/fhluo/xpic/internal/thumbcache"
	"github.com/fhluo/xpic/internal/wallpaper"
)

// Controller owns the /api/v1 routes and their dependencies.
type Controller struct {
	Group *echo.Group

	refresher  *gallery.Refresher
	wallpapers *wallpaper.Client
	thumbs     *thumbcache.Cache
	metrics    *observability.Metrics
	log        logger.Logger

	// background refreshes started by list requests outlive the request
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	closeOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithMetrics records request metrics and exposes /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger sets the controller logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New registers the API routes on e.
func New(e *echo.Echo, refresher *gallery.Refresher, wallpapers *wallpaper.Client, thumbs *thumbcache.Cache, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		Group:      e.Group("/api/v1"),
		refresher:  refresher,
		wallpapers: wallpapers,
		thumbs:     thumbs,
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = c.log.Module("api")

	c.Group.Use(c.LoggingMiddleware())
	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)
	c.Group.GET("/markets", c.ListMarkets)
	c.Group.GET("/markets/:market/images", c.ListImages)
	c.Group.POST("/markets/:market/refresh", c.RefreshMarket)
	c.Group.GET("/thumbnail", c.GetThumbnail)
}

// HealthCheck reports liveness, uptime and the build version.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	build := buildinfo.Current()
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        build.GetVersion(),
		"build_date":     build.GetBuildDate(),
		"timestamp":      time.Now().Format(time.RFC3339),
		"uptime":         uptime.Round(time.Second).String(),
		"uptime_seconds": uptime.Seconds(),
	})
}

// Shutdown stops background refreshes started by list requests and waits
// for them.
func (c *Controller) Shutdown() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.refresher.Close()
		c.log.Debug("api controller shut down")
	})
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an ErrorResponse with a fresh correlation id.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString(),
	}
}

// HandleError logs err under a correlation id and writes it as JSON.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)

	c.log.Error("api error",
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("message", message),
		logger.Error(err),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()))

	return ctx.JSON(code, resp)
}

// LoggingMiddleware logs each request and records its duration.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			elapsed := time.Since(start)

			req := ctx.Request()
			res := ctx.Response()
			status := res.Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			}

			if c.metrics != nil && c.metrics.HTTP != nil {
				// labelled by route pattern, e.g. /api/v1/markets/:market/images
				c.metrics.HTTP.RecordServerRequest(req.Method, ctx.Path(), status, elapsed)
			}

			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.String("query", req.URL.RawQuery),
				logger.Int("status", status),
				logger.String("ip", ctx.RealIP()),
				logger.Int64("latency_ms", elapsed.Milliseconds()),
			}
			if err != nil {
				fields = append(fields, logger.Error(err))
			}
			c.log.Info("api request", fields...)

			return err
		}
	}
}
