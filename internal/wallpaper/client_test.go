package wallpaper

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhluo/xpic/internal/httpclient"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

const partialArchive = `{"images":[
  {"startdate":"20250103","fullstartdate":"202501030800","enddate":"20250104",
   "url":"/th?id=OHR.Third_EN-US3_UHD.jpg","urlbase":"/th?id=OHR.Third_EN-US3",
   "copyright":"Third (© C)","copyrightlink":"/search?q=c","title":"Third",
   "quiz":"/search?q=quiz","wp":true,"hsh":"h3"},
  {"startdate":"20250102","fullstartdate":"202501020800","enddate":"20250103",
   "url":"/az/hprichbg/rb/NoID_UHD.jpg","urlbase":"","copyright":"Broken (© B)",
   "copyrightlink":"","title":"Broken","quiz":"","wp":false,"hsh":"h2"},
  {"startdate":"20250101","fullstartdate":"202501010800","enddate":"20250102",
   "url":"/th?id=OHR.First_EN-US1_1920x1080.jpg","urlbase":"/th?id=OHR.First_EN-US1",
   "copyright":"First (© A)","copyrightlink":"/search?q=a","title":"Info",
   "quiz":"/search?q=quiz","wp":true,"hsh":"h1"}
]}`

func newTestClient(t *testing.T, log logger.Logger) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	hc := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(hc.Close)
	bc, err := bing.NewClient(hc)
	require.NoError(t, err)
	return NewClient(bc, log), transport
}

func TestListImages_DropsMalformedRecords(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	c, transport := newTestClient(t, logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC))
	transport.RegisterResponder(http.MethodGet, bing.HPImageArchiveURL,
		httpmock.NewStringResponder(http.StatusOK, partialArchive))

	images, err := c.ListImages(t.Context(), bing.NewQuery())
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "OHR.Third_EN-US3_UHD.jpg", images[0].ID)
	assert.Equal(t, "OHR.First_EN-US1_1920x1080.jpg", images[1].ID)
	assert.Equal(t, "1920", images[1].IDParsed.Width)

	assert.Contains(t, buf.String(), "dropping malformed image record")
	assert.Contains(t, buf.String(), `"module":"wallpaper"`)
}

func TestListImages_SendsQuery(t *testing.T) {
	t.Parallel()

	c, transport := newTestClient(t, nil)
	transport.RegisterResponderWithQuery(http.MethodGet, bing.HPImageArchiveURL,
		"format=js&idx=1&n=3&mkt=ja-JP&uhd=0",
		httpmock.NewStringResponder(http.StatusOK, `{"images":[]}`))

	images, err := c.ListImages(t.Context(), bing.NewQuery(
		bing.WithIndex(1), bing.WithNumber(3), bing.WithMarket(bing.MarketJaJP), bing.WithUHD(false)))
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestListImages_Error(t *testing.T) {
	t.Parallel()

	c, transport := newTestClient(t, nil)
	transport.RegisterNoResponder(httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	images, err := c.ListImages(t.Context(), bing.NewQuery())
	require.Error(t, err)
	assert.Nil(t, images)
}

func TestFetchImageAndThumbnail(t *testing.T) {
	t.Parallel()

	c, transport := newTestClient(t, nil)
	transport.RegisterResponderWithQuery(http.MethodGet, bing.ThumbnailURL,
		"id=OHR.First_EN-US1_1920x1080.jpg",
		httpmock.NewBytesResponder(http.StatusOK, []byte("full")))
	transport.RegisterResponderWithQuery(http.MethodGet, bing.ThumbnailURL,
		"id=OHR.First_EN-US1_1920x1080.jpg&w=320&h=180",
		httpmock.NewBytesResponder(http.StatusOK, []byte("thumb")))

	resp, err := c.FetchImage(t.Context(), "OHR.First_EN-US1_1920x1080.jpg")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "full", string(body))

	resp, err = c.FetchThumbnail(t.Context(), bing.ThumbnailQuery{ID: "OHR.First_EN-US1_1920x1080.jpg", Width: 320, Height: 180})
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "thumb", string(body))

	u, err := c.ThumbnailURL(bing.ThumbnailQuery{ID: "x", Width: 10})
	require.NoError(t, err)
	assert.Equal(t, "https://www.bing.com/th?id=x&w=10", u)
}
