package wallpaper

import (
	"regexp"
	"strings"
)

// matches "<description> (<attribution>)" where the parenthesized group ends the string
var copyrightPattern = regexp.MustCompile(`(?s)^(.*?)\s*\(([^()]*)\)\s*$`)

// Copyright splits a "description (attribution)" string.
type Copyright struct {
	Description string `json:"description"`
	Copyright   string `json:"copyright"`
}

// ParseCopyright returns nil when s has no trailing parenthesized group.
// Callers fall back to the raw string.
func ParseCopyright(s string) *Copyright {
	m := copyrightPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return &Copyright{
		Description: strings.TrimSpace(m[1]),
		Copyright:   strings.TrimSpace(m[2]),
	}
}
