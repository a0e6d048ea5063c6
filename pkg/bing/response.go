package bing

import "encoding/json"

// Response is the HPImageArchive JSON envelope.
type Response struct {
	Images   []Image   `json:"images"`
	Tooltips *Tooltips `json:"tooltips,omitempty"`
}

// Image is a record exactly as the service sends it. URLs are relative to BaseURL.
type Image struct {
	StartDate     string `json:"startdate"`
	FullStartDate string `json:"fullstartdate"`
	EndDate       string `json:"enddate"`
	URL           string `json:"url"`
	URLBase       string `json:"urlbase"`
	Copyright     string `json:"copyright"`
	CopyrightLink string `json:"copyrightlink"`
	Title         string `json:"title"`
	QuizLink      string `json:"quiz"`
	Wallpaper     bool   `json:"wp"`
	Hash          string `json:"hsh"`

	Dark     *int              `json:"drk,omitempty"`
	Top      *int              `json:"top,omitempty"`
	Bottom   *int              `json:"bot,omitempty"`
	Hotspots []json.RawMessage `json:"hs,omitempty"`
}

// Tooltips are UI strings localized for the requested market.
type Tooltips struct {
	Loading  string `json:"loading,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Walle    string `json:"walle,omitempty"`
	Walls    string `json:"walls,omitempty"`
}
