package gallery

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/httpclient"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

const mirrorTemplate = "https://mirror.test/data/{market}.json"

const mirrorSnapshot = `[
  {"url":"https://www.bing.com/th?id=OHR.Second_DE-DE2_UHD.jpg","full_start_date":"202501020800",
   "id":"OHR.Second_DE-DE2_UHD.jpg","copyright":"Second (© B)","title":"Second"},
  {"url":"https://www.bing.com/th?id=OHR.First_DE-DE1_UHD.jpg","full_start_date":"202501010800",
   "id":"OHR.First_DE-DE1_UHD.jpg","copyright":"First (© A)","title":"First"},
  {"url":"https://www.bing.com/az/broken.jpg","full_start_date":"202501010000","id":""}
]`

func newMockClient(t *testing.T) (*httpclient.Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	hc := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(hc.Close)
	return hc, transport
}

func TestMirror_URL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://mirror.test/data/zh-CN.json", NewMirror(nil, mirrorTemplate, nil).URL(bing.MarketZhCN))
	assert.Equal(t,
		"https://raw.githubusercontent.com/fhluo/xpic/main/data/en-US.json",
		NewMirror(nil, "", nil).URL(bing.MarketEnUS))
}

func TestMirror_Fetch(t *testing.T) {
	t.Parallel()

	hc, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, "https://mirror.test/data/de-DE.json",
		httpmock.NewStringResponder(http.StatusOK, mirrorSnapshot))

	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)
	images, err := NewMirror(hc, mirrorTemplate, log).Fetch(t.Context(), bing.MarketDeDE)
	require.NoError(t, err)
	require.Len(t, images, 2, "records without an id are dropped")
	assert.Contains(t, buf.String(), "dropping mirror records without id")
	assert.Contains(t, buf.String(), `"dropped":1`)
	assert.Contains(t, buf.String(), `"module":"gallery.mirror"`)
	assert.Equal(t, "OHR.Second_DE-DE2_UHD.jpg", images[0].ID)
	require.NotNil(t, images[0].IDParsed)
	assert.Equal(t, bing.MarketDeDE, images[0].IDParsed.Market)
	require.NotNil(t, images[1].CopyrightParsed)
	assert.Equal(t, "© A", images[1].CopyrightParsed.Copyright)
}

func TestMirror_FetchErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responder httpmock.Responder
		category  xerrors.ErrorCategory
	}{
		{"not found", httpmock.NewStringResponder(http.StatusNotFound, "404: Not Found"), xerrors.CategoryHTTP},
		{"bad json", httpmock.NewStringResponder(http.StatusOK, `{"images":`), xerrors.CategoryFileParsing},
		{"transport", httpmock.NewErrorResponder(errors.New("connection reset")), xerrors.CategoryNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hc, transport := newMockClient(t)
			transport.RegisterResponder(http.MethodGet, "https://mirror.test/data/en-US.json", tt.responder)

			images, err := NewMirror(hc, mirrorTemplate, nil).Fetch(t.Context(), bing.MarketEnUS)
			require.Error(t, err)
			assert.Nil(t, images)
			assert.True(t, xerrors.IsCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestAPISource_Fetch(t *testing.T) {
	t.Parallel()

	hc, transport := newMockClient(t)
	transport.RegisterResponderWithQuery(http.MethodGet, bing.HPImageArchiveURL,
		"format=js&idx=0&n=8&mkt=ja-JP&uhd=1",
		httpmock.NewStringResponder(http.StatusOK, apiArchive))

	bc, err := bing.NewClient(hc)
	require.NoError(t, err)

	images, err := NewAPISource(wallpaper.NewClient(bc, nil), 0, true).Fetch(t.Context(), bing.MarketJaJP)
	require.NoError(t, err)
	assert.Len(t, images, 3)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}
