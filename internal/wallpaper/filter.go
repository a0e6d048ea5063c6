package wallpaper

import "strings"

// Filter returns the images whose title or copyright contains query,
// ignoring case. An empty query returns images unchanged.
func Filter(images []Image, query string) []Image {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return images
	}

	var out []Image
	for i := range images {
		if strings.Contains(strings.ToLower(images[i].Title), query) ||
			strings.Contains(strings.ToLower(images[i].Copyright), query) {
			out = append(out, images[i])
		}
	}
	return out
}
