package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

// MarketResponse describes one market.
type MarketResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// ImageResponse is an Image plus fields derived for display.
type ImageResponse struct {
	wallpaper.Image
	DisplayTitle string `json:"display_title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// ImagesResponse is the body of the image list endpoints.
type ImagesResponse struct {
	Market     string          `json:"market"`
	Count      int             `json:"count"`
	Refreshing bool            `json:"refreshing"`
	Images     []ImageResponse `json:"images"`
}

// ListMarkets returns every supported market with its display names.
func (c *Controller) ListMarkets(ctx echo.Context) error {
	markets := bing.Markets()
	resp := make([]MarketResponse, 0, len(markets))
	for _, m := range markets {
		resp = append(resp, MarketResponse{
			Code:       m.Code(),
			Name:       m.DisplayName(),
			NativeName: m.NativeName(),
		})
	}
	return ctx.JSON(http.StatusOK, resp)
}

// ListImages returns the in-memory list for a market, filtered by ?q=.
// It starts a background refresh; with ?wait=true it waits for the refresh
// and returns its result instead.
func (c *Controller) ListImages(ctx echo.Context) error {
	market, err := bing.ParseMarket(ctx.Param("market"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid market", http.StatusBadRequest)
	}

	wait := false
	if raw := ctx.QueryParam("wait"); raw != "" {
		if wait, err = strconv.ParseBool(raw); err != nil {
			return c.HandleError(ctx, err, "Invalid wait parameter", http.StatusBadRequest)
		}
	}

	current, _ := c.refresher.Images(market)

	if wait {
		images, err := c.refresher.Refresh(ctx.Request().Context(), market, current)
		if err != nil {
			return c.refreshError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, c.imagesResponse(market, images, ctx.QueryParam("q"), false))
	}

	refreshing := false
	// no new background work once Shutdown has started
	if c.ctx.Err() == nil {
		task := c.refresher.RefreshAsync(c.ctx, market, current)
		select {
		case <-task.Done():
		default:
			refreshing = true
		}
	}
	return ctx.JSON(http.StatusOK, c.imagesResponse(market, current, ctx.QueryParam("q"), refreshing))
}

// RefreshMarket refreshes a market and returns the resulting list.
func (c *Controller) RefreshMarket(ctx echo.Context) error {
	market, err := bing.ParseMarket(ctx.Param("market"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid market", http.StatusBadRequest)
	}

	current, _ := c.refresher.Images(market)
	images, err := c.refresher.Refresh(ctx.Request().Context(), market, current)
	if err != nil {
		return c.refreshError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, c.imagesResponse(market, images, "", false))
}

// GetThumbnail serves a thumbnail through the on-disk cache.
// Query parameters: id (required), w, h, c (smart or blind), p (0 disables padding).
func (c *Controller) GetThumbnail(ctx echo.Context) error {
	q := bing.ThumbnailQuery{ID: ctx.QueryParam("id")}

	var err error
	if q.Width, err = intParam(ctx, "w"); err != nil {
		return c.HandleError(ctx, err, "Invalid width", http.StatusBadRequest)
	}
	if q.Height, err = intParam(ctx, "h"); err != nil {
		return c.HandleError(ctx, err, "Invalid height", http.StatusBadRequest)
	}
	if raw := ctx.QueryParam("c"); raw != "" {
		if q.Crop, err = bing.ParseCropMode(raw); err != nil {
			return c.HandleError(ctx, err, "Invalid crop mode", http.StatusBadRequest)
		}
	}
	q.NoPadding = ctx.QueryParam("p") == "0"

	thumbURL, err := c.wallpapers.ThumbnailURL(q)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid thumbnail query", http.StatusBadRequest)
	}

	data, err := c.thumbs.Fetch(ctx.Request().Context(), thumbURL)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to fetch thumbnail", http.StatusBadGateway)
	}

	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Blob(http.StatusOK, http.DetectContentType(data), data)
}

func (c *Controller) refreshError(ctx echo.Context, err error) error {
	if errors.IsCategory(err, errors.CategoryCancellation) {
		return c.HandleError(ctx, err, "Refresh canceled", http.StatusServiceUnavailable)
	}
	return c.HandleError(ctx, err, "Refresh failed", http.StatusInternalServerError)
}

func (c *Controller) imagesResponse(market bing.Market, images []wallpaper.Image, query string, refreshing bool) ImagesResponse {
	filtered := wallpaper.Filter(images, query)
	out := make([]ImageResponse, 0, len(filtered))
	for i := range filtered {
		img := &filtered[i]
		thumb, _ := c.wallpapers.ThumbnailURL(img.ThumbnailQuery())
		out = append(out, ImageResponse{
			Image:        *img,
			DisplayTitle: img.DisplayTitle(),
			Description:  img.Description(),
			ThumbnailURL: thumb,
		})
	}
	return ImagesResponse{
		Market:     market.Code(),
		Count:      len(out),
		Refreshing: refreshing,
		Images:     out,
	}
}

func intParam(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
