package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

func validSettings() *Settings {
	s := &Settings{Market: bing.MarketEnUS}
	s.Refresh = RefreshSettings{
		MirrorEnabled:   true,
		MirrorURL:       DefaultMirrorURL,
		MirrorThreshold: 168 * time.Hour,
		APIThreshold:    24 * time.Hour,
		Count:           8,
		UHD:             true,
		CacheTTL:        24 * time.Hour,
	}
	s.HTTP.Timeout = 30 * time.Second
	s.HTTP.RateLimit = 4
	s.HTTP.Concurrency = 4
	s.Bing.BaseURL = bing.BaseURL
	s.Logging = logger.LoggingConfig{DefaultLevel: "info"}
	s.WebServer.Listen = DefaultListen
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"unknown market", func(s *Settings) { s.Market = "xx-XX" }, "xx-XX"},
		{"mirror url without placeholder", func(s *Settings) { s.Refresh.MirrorURL = "https://example.com/data.json" }, "{market}"},
		{"mirror disabled ignores url", func(s *Settings) { s.Refresh.MirrorEnabled = false; s.Refresh.MirrorURL = "" }, ""},
		{"zero api threshold", func(s *Settings) { s.Refresh.APIThreshold = 0 }, "refresh.apithreshold"},
		{"count too large", func(s *Settings) { s.Refresh.Count = 9 }, "refresh.count"},
		{"count zero", func(s *Settings) { s.Refresh.Count = 0 }, "refresh.count"},
		{"relative base url", func(s *Settings) { s.Bing.BaseURL = "www.bing.com" }, "bing.baseurl"},
		{"bad log level", func(s *Settings) { s.Logging.DefaultLevel = "loud" }, "logging.default_level"},
		{"sentry without dsn", func(s *Settings) { s.Sentry.Enabled = true }, "sentry.dsn"},
		{"no listen address", func(s *Settings) { s.WebServer.Listen = "" }, "webserver.listen"},
		{"zero timeout", func(s *Settings) { s.HTTP.Timeout = 0 }, "http.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validSettings()
			tt.modify(s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettings_CanonicalizesMarket(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Market = "ZH-cn"
	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, bing.MarketZhCN, s.Market)
}

func TestValidateSettings_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Market = "nowhere"
	s.HTTP.RateLimit = 0
	s.Refresh.CacheTTL = -time.Second

	err := ValidateSettings(s)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}
