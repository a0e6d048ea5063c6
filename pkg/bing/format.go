package bing

import "fmt"

// Format is the response encoding requested from HPImageArchive.
type Format string

const (
	FormatJSON Format = "js"
	FormatXML  Format = "xml"
	FormatRSS  Format = "rss"
	FormatHTML Format = "hp"
)

// ParseFormat accepts either the wire value ("js") or the common name ("json").
func ParseFormat(s string) (Format, error) {
	switch s {
	case "js", "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "rss":
		return FormatRSS, nil
	case "hp", "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

func (f Format) String() string { return string(f) }
