// Package wallpaper holds the normalized image record, the id and copyright
// grammars, and a client that turns raw archive responses into records.
package wallpaper

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/pkg/bing"
)

// FullStartDateLayout is the layout of Image.FullStartDate, always UTC.
const FullStartDateLayout = "200601021504"

// placeholderTitle is sent by the service when an image has no real title
const placeholderTitle = "Info"

// Image is a normalized image record. Values are treated as immutable once built.
// IDParsed and CopyrightParsed are derived and recomputed on decode.
type Image struct {
	URL           string `json:"url"`
	StartDate     string `json:"start_date"`
	FullStartDate string `json:"full_start_date"`
	EndDate       string `json:"end_date"`

	ID       string `json:"id"`
	IDParsed *ID    `json:"-"`

	Copyright       string     `json:"copyright"`
	CopyrightParsed *Copyright `json:"-"`
	CopyrightLink   string     `json:"copyright_link"`

	Title     string `json:"title"`
	QuizLink  string `json:"quiz_link"`
	Wallpaper bool   `json:"wallpaper"`
	Hash      string `json:"hash"`
}

// imageJSON has Image's fields without its methods
type imageJSON Image

// UnmarshalJSON decodes an image and parses its id and copyright.
func (img *Image) UnmarshalJSON(data []byte) error {
	var raw imageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*img = Image(raw)
	img.parseDerived()
	return nil
}

func (img *Image) parseDerived() {
	img.IDParsed = ParseID(img.ID)
	img.CopyrightParsed = ParseCopyright(img.Copyright)
}

// FromRaw normalizes a raw record: links are resolved against base and the id
// is taken from the id query parameter of the resolved url.
func FromRaw(base *url.URL, raw *bing.Image) (Image, error) {
	imageURL, err := resolve(base, raw.URL)
	if err != nil {
		return Image{}, errors.Newf("invalid image url: %w", err).
			Category(errors.CategoryValidation).
			Component("wallpaper").
			Context("field", "url").
			Context("full_start_date", raw.FullStartDate).
			Build()
	}

	id := imageURL.Query().Get("id")
	if id == "" {
		return Image{}, errors.Newf("image url has no id parameter").
			Category(errors.CategoryValidation).
			Component("wallpaper").
			Context("url", imageURL.String()).
			Context("full_start_date", raw.FullStartDate).
			Build()
	}

	copyrightLink, err := resolve(base, raw.CopyrightLink)
	if err != nil {
		return Image{}, errors.Newf("invalid copyright link: %w", err).
			Category(errors.CategoryValidation).
			Component("wallpaper").
			Context("field", "copyrightlink").
			Context("id", id).
			Build()
	}

	quizLink, err := resolve(base, raw.QuizLink)
	if err != nil {
		return Image{}, errors.Newf("invalid quiz link: %w", err).
			Category(errors.CategoryValidation).
			Component("wallpaper").
			Context("field", "quiz").
			Context("id", id).
			Build()
	}

	img := Image{
		URL:           imageURL.String(),
		StartDate:     raw.StartDate,
		FullStartDate: raw.FullStartDate,
		EndDate:       raw.EndDate,
		ID:            id,
		Copyright:     raw.Copyright,
		CopyrightLink: copyrightLink.String(),
		Title:         raw.Title,
		QuizLink:      quizLink.String(),
		Wallpaper:     raw.Wallpaper,
		Hash:          raw.Hash,
	}
	img.parseDerived()
	return img, nil
}

func resolve(base *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(u), nil
}

// StartTime parses FullStartDate as a UTC time.
func (img *Image) StartTime() (time.Time, error) {
	return time.ParseInLocation(FullStartDateLayout, img.FullStartDate, time.UTC)
}

// DisplayTitle returns the title, or the raw copyright string when the title
// is empty or the "Info" placeholder.
func (img *Image) DisplayTitle() string {
	title := strings.TrimSpace(img.Title)
	if title == "" || title == placeholderTitle {
		return img.Copyright
	}
	return title
}

// Description returns the copyright text without the attribution.
func (img *Image) Description() string {
	if img.CopyrightParsed != nil {
		return img.CopyrightParsed.Description
	}
	return img.Copyright
}

// ThumbnailQuery returns a /th query for this image.
func (img *Image) ThumbnailQuery() bing.ThumbnailQuery {
	return bing.ThumbnailQuery{ID: img.ID}
}
