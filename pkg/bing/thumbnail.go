package bing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CropMode selects how /th crops an image to the requested size.
type CropMode int

const (
	// CropBlindRatio crops from the bottom, or from both sides, to reach the ratio.
	CropBlindRatio CropMode = 4
	// CropSmartRatio crops around the region of interest, falling back to blind ratio.
	CropSmartRatio CropMode = 7
)

// ParseCropMode accepts "blind", "smart" or the numeric codes "4" and "7".
func ParseCropMode(s string) (CropMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blind", "4":
		return CropBlindRatio, nil
	case "smart", "7":
		return CropSmartRatio, nil
	default:
		return 0, fmt.Errorf("unknown crop mode %q", s)
	}
}

func (c CropMode) String() string {
	switch c {
	case CropBlindRatio:
		return "blind"
	case CropSmartRatio:
		return "smart"
	default:
		return strconv.Itoa(int(c))
	}
}

// ThumbnailQuery holds the /th parameters. Zero-valued fields are left out
// of the encoded query.
type ThumbnailQuery struct {
	ID        string   // id
	PID       string   // pid, page context
	Width     int      // w
	Height    int      // h
	NoPadding bool     // p=0, no white padding when upscaling
	Crop      CropMode // c
}

// Encode serializes the query in the fixed order id, pid, w, h, p, c so the
// resulting URL is stable enough to serve as a cache key.
func (q ThumbnailQuery) Encode() string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	add("id", q.ID)
	if q.PID != "" {
		add("pid", q.PID)
	}
	if q.Width > 0 {
		add("w", strconv.Itoa(q.Width))
	}
	if q.Height > 0 {
		add("h", strconv.Itoa(q.Height))
	}
	if q.NoPadding {
		add("p", "0")
	}
	if q.Crop != 0 {
		add("c", strconv.Itoa(int(q.Crop)))
	}
	return b.String()
}

// URL returns the thumbnail URL on the public endpoint.
func (q ThumbnailQuery) URL() (string, error) {
	return q.BuildURL(ThumbnailURL)
}

// BuildURL appends the encoded query to endpoint.
func (q ThumbnailQuery) BuildURL(endpoint string) (string, error) {
	if q.ID == "" {
		return "", fmt.Errorf("thumbnail query: empty id")
	}
	if q.Width < 0 || q.Height < 0 {
		return "", fmt.Errorf("thumbnail query: negative size %dx%d", q.Width, q.Height)
	}
	if q.Crop != 0 && q.Crop != CropBlindRatio && q.Crop != CropSmartRatio {
		return "", fmt.Errorf("thumbnail query: unknown crop mode %d", int(q.Crop))
	}
	return endpoint + "?" + q.Encode(), nil
}
