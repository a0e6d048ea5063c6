package conf

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

// ValidationError collects every problem found in a Settings value.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return "validation errors: " + strings.Join(ve.Errors, "; ")
}

// ValidateSettings checks settings and normalizes the market code.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	market, err := bing.ParseMarket(string(settings.Market))
	if err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	} else {
		settings.Market = market
	}

	ve.Errors = append(ve.Errors, validateRefreshSettings(&settings.Refresh)...)

	if settings.HTTP.Timeout <= 0 {
		ve.Errors = append(ve.Errors, "http.timeout must be positive")
	}
	if settings.HTTP.RateLimit <= 0 {
		ve.Errors = append(ve.Errors, "http.ratelimit must be positive")
	}
	if settings.HTTP.Concurrency < 1 {
		ve.Errors = append(ve.Errors, "http.concurrency must be at least 1")
	}

	if u, err := url.Parse(settings.Bing.BaseURL); err != nil || !u.IsAbs() {
		ve.Errors = append(ve.Errors, fmt.Sprintf("bing.baseurl %q is not an absolute URL", settings.Bing.BaseURL))
	}

	if _, err := logger.ParseLevel(settings.Logging.DefaultLevel); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("logging.default_level: %v", err))
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "sentry.dsn is required when sentry is enabled")
	}

	if settings.WebServer.Listen == "" {
		ve.Errors = append(ve.Errors, "webserver.listen must not be empty")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateRefreshSettings(r *RefreshSettings) []string {
	var errs []string

	if r.MirrorEnabled && !strings.Contains(r.MirrorURL, "{market}") {
		errs = append(errs, "refresh.mirrorurl must contain {market}")
	}
	if r.MirrorThreshold <= 0 {
		errs = append(errs, "refresh.mirrorthreshold must be positive")
	}
	if r.APIThreshold <= 0 {
		errs = append(errs, "refresh.apithreshold must be positive")
	}
	if r.Count < 1 || r.Count > bing.DefaultNumber {
		errs = append(errs, fmt.Sprintf("refresh.count must be between 1 and %d", bing.DefaultNumber))
	}
	if r.CacheTTL <= 0 {
		errs = append(errs, "refresh.cachettl must be positive")
	}

	return errs
}
