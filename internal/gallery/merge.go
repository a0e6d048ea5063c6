// Package gallery keeps each market's image list current. It merges lists
// by id, decides when cached data is stale, and runs at most one refresh per
// market at a time.
package gallery

import (
	"slices"
	"strings"

	"github.com/fhluo/xpic/internal/wallpaper"
)

// Merge deduplicates existing and incoming by id and sorts the result by
// FullStartDate, newest first. Incoming is scanned first, so on an id
// collision the incoming record wins whatever its date. Order among equal
// dates is unspecified.
func Merge(existing, incoming []wallpaper.Image) []wallpaper.Image {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]wallpaper.Image, 0, len(existing)+len(incoming))

	for _, list := range [2][]wallpaper.Image{incoming, existing} {
		for i := range list {
			if _, dup := seen[list[i].ID]; dup {
				continue
			}
			seen[list[i].ID] = struct{}{}
			out = append(out, list[i])
		}
	}

	// FullStartDate is fixed-width YYYYMMDDHHmm, so string order is time order
	slices.SortStableFunc(out, func(a, b wallpaper.Image) int {
		return strings.Compare(b.FullStartDate, a.FullStartDate)
	})
	return out
}
