package cmd

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhluo/xpic/internal/conf"
	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/testutil"
	"github.com/fhluo/xpic/pkg/bing"
)

func newTestContext(t *testing.T) (*config.Context, *httpmock.MockTransport) {
	t.Helper()
	t.Cleanup(func() { logger.SetGlobal(logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)) })

	s := &conf.Settings{Market: bing.MarketEnUS}
	s.Paths.DataDir = t.TempDir()
	s.Paths.CacheDir = t.TempDir()
	s.Refresh = conf.RefreshSettings{
		MirrorThreshold: 168 * time.Hour,
		APIThreshold:    24 * time.Hour,
		Count:           8,
		UHD:             true,
		CacheTTL:        time.Hour,
	}
	s.HTTP.Timeout = 5 * time.Second
	s.HTTP.RateLimit = 100
	s.HTTP.Concurrency = 2
	s.Bing.BaseURL = bing.BaseURL
	s.Logging = logger.LoggingConfig{
		DefaultLevel: "info",
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput:   &logger.FileOutput{Enabled: false},
	}

	transport := httpmock.NewMockTransport()
	ctx := config.NewContext(s, nil)
	ctx.Transport = transport
	t.Cleanup(ctx.Close)
	return ctx, transport
}

func execute(t *testing.T, ctx *config.Context, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := RootCommand(ctx)
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestMarketsCommand(t *testing.T) {
	ctx, transport := newTestContext(t)

	out, err := execute(t, ctx, "markets")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(bing.Markets()))
	assert.True(t, strings.HasPrefix(lines[0], "da-DK "), lines[0])
	assert.Contains(t, out, "German")
	assert.Nil(t, ctx.Refresher, "markets does not build services")
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestMarketsCommand_SetDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Cleanup(func() { logger.SetGlobal(logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)) })

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "share"))
	t.Setenv("HOME", home)

	settings, err := conf.Load()
	require.NoError(t, err)
	settings.Logging.Console = &logger.ConsoleOutput{Enabled: false}
	ctx := config.NewContext(settings, nil)
	t.Cleanup(ctx.Close)

	out, err := execute(t, ctx, "markets", "--set-default", "ja-jp", "--data-dir", filepath.Join(home, "flag-data"))
	require.NoError(t, err)
	assert.Equal(t, "default market: ja-JP\n", out)
	assert.Equal(t, bing.MarketJaJP, ctx.Settings.Market)

	raw, err := os.ReadFile(filepath.Join(home, "config", "xpic", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "market: ja-JP")
	assert.NotContains(t, string(raw), "flag-data", "flag overrides stay out of the file")

	_, err = execute(t, ctx, "markets", "--set-default", "xx-XX")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestListCommand(t *testing.T) {
	ctx, transport := newTestContext(t)
	transport.RegisterResponderWithQuery(http.MethodGet, bing.HPImageArchiveURL,
		"format=js&idx=0&n=8&mkt=de-DE&uhd=1",
		httpmock.NewStringResponder(http.StatusOK, testutil.ArchiveJSON))

	out, err := execute(t, ctx, "list", "--market", "de-de", "-n", "2")
	require.NoError(t, err)

	assert.Equal(t,
		"Frozen lake (© C): https://www.bing.com/th?id=OHR.Third_EN-US3_UHD.jpg\n"+
			"Second: https://www.bing.com/th?id=OHR.Second_EN-US2_UHD.jpg\n",
		out)
	assert.Equal(t, bing.MarketDeDE, ctx.Settings.Market)
	assert.FileExists(t, filepath.Join(ctx.Settings.Paths.DataDir, "de-DE.json"))
}

func TestListCommand_Query(t *testing.T) {
	ctx, transport := newTestContext(t)
	transport.RegisterResponder(http.MethodGet, bing.HPImageArchiveURL,
		httpmock.NewStringResponder(http.StatusOK, testutil.ArchiveJSON))

	out, err := execute(t, ctx, "list", "-q", "DUNES")
	require.NoError(t, err)
	assert.Equal(t, "First: https://www.bing.com/th?id=OHR.First_EN-US1_UHD.jpg\n", out)
}

func TestInvalidMarketFlag(t *testing.T) {
	ctx, transport := newTestContext(t)

	_, err := execute(t, ctx, "list", "--market", "xx-XX")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestRefreshCommand(t *testing.T) {
	ctx, transport := newTestContext(t)
	transport.RegisterResponder(http.MethodGet, bing.HPImageArchiveURL,
		httpmock.NewStringResponder(http.StatusOK, testutil.ArchiveJSON))

	out, err := execute(t, ctx, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "en-US: 3 images, newest 2025-01-03\n", out)
}

func TestRefreshCommand_All(t *testing.T) {
	ctx, transport := newTestContext(t)
	transport.RegisterResponder(http.MethodGet, bing.HPImageArchiveURL,
		httpmock.NewStringResponder(http.StatusOK, testutil.EmptyArchiveJSON))

	out, err := execute(t, ctx, "refresh", "--all")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(bing.Markets()))
	assert.Equal(t, "da-DK: 0 images", lines[0])
	assert.Equal(t, len(bing.Markets()), transport.GetTotalCallCount())
}

func TestSaveCommand(t *testing.T) {
	ctx, transport := newTestContext(t)
	transport.RegisterResponder(http.MethodGet, bing.HPImageArchiveURL,
		httpmock.NewStringResponder(http.StatusOK, testutil.ArchiveJSON))
	transport.RegisterResponder(http.MethodGet, bing.ThumbnailURL,
		httpmock.NewBytesResponder(http.StatusOK, testutil.JPEGBytes))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "OHR.Second_EN-US2_UHD.jpg"), []byte("old"), 0o600))

	out, err := execute(t, ctx, "save", dir)
	require.NoError(t, err)
	assert.Equal(t, "saved 2, skipped 1, failed 0\n", out)

	data, err := os.ReadFile(filepath.Join(dir, "OHR.Third_EN-US3_UHD.jpg"))
	require.NoError(t, err)
	assert.Equal(t, testutil.JPEGBytes, data)
}

func TestThumbnailCommand(t *testing.T) {
	ctx, transport := newTestContext(t)
	transport.RegisterResponderWithQuery(http.MethodGet, bing.ThumbnailURL,
		"id=OHR.Third_EN-US3_UHD.jpg&w=320&h=180&p=0&c=7",
		httpmock.NewBytesResponder(http.StatusOK, testutil.JPEGBytes))

	output := filepath.Join(t.TempDir(), "thumb.jpg")
	_, err := execute(t, ctx, "thumbnail", "OHR.Third_EN-US3_UHD.jpg",
		"-w", "320", "-H", "180", "--crop", "smart", "--no-padding", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, testutil.JPEGBytes, data)

	// the second request is served from the cache
	out, err := execute(t, ctx, "thumbnail", "OHR.Third_EN-US3_UHD.jpg",
		"-w", "320", "-H", "180", "--crop", "smart", "--no-padding")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), ctx.Settings.Paths.CacheDir), out)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestThumbnailCommand_BadCrop(t *testing.T) {
	ctx, transport := newTestContext(t)

	_, err := execute(t, ctx, "thumbnail", "OHR.X_EN-US1_UHD.jpg", "--crop", "sideways")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	assert.Zero(t, transport.GetTotalCallCount())
}
