package gallery

import (
	"time"

	"github.com/fhluo/xpic/internal/wallpaper"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// IsStale reports whether images need a refresh at the current wall-clock time.
func IsStale(images []wallpaper.Image, maxAge time.Duration) bool {
	return Clock(time.Now).IsStale(images, maxAge)
}

// IsStale is true when images is empty or the newest FullStartDate is more
// than maxAge before now. Records with an unparsable date are ignored.
func (now Clock) IsStale(images []wallpaper.Image, maxAge time.Duration) bool {
	newest, ok := Newest(images)
	if !ok {
		return true
	}
	return now().Sub(newest) > maxAge
}

// Newest returns the latest FullStartDate in images.
func Newest(images []wallpaper.Image) (time.Time, bool) {
	var newest time.Time
	found := false
	for i := range images {
		t, err := images[i].StartTime()
		if err != nil {
			continue
		}
		if !found || t.After(newest) {
			newest, found = t, true
		}
	}
	return newest, found
}
