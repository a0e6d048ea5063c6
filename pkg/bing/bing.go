// Package bing is a client for the Bing homepage image service: the
// HPImageArchive endpoint that lists the images of the day and the /th
// endpoint that serves images and thumbnails.
//
// The package only deals with the wire format. Normalized domain records
// live in internal/wallpaper.
package bing

const (
	// BaseURL is the service root every relative link in a response is resolved against.
	BaseURL = "https://www.bing.com/"

	// HPImageArchiveURL lists the images of the day.
	HPImageArchiveURL = BaseURL + "HPImageArchive.aspx"

	// ThumbnailURL serves images by id, optionally resized and cropped.
	ThumbnailURL = BaseURL + "th"

	hpImageArchivePath = "HPImageArchive.aspx"
	thumbnailPath      = "th"
)
