package wallpaper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fhluo/xpic/pkg/bing"
)

// rowToken marks an image that is not tied to a market
const rowToken = "ROW"

var idPattern = regexp.MustCompile(
	`^OHR\.(?P<name>\w+)_(?P<market>ROW|\w{2}-\w{2})(?P<number>\d+)_(?:(?P<width>\d+)x(?P<height>\d+)|(?P<uhd>UHD))\.(?P<extension>\w+)$`)

var digitsPattern = regexp.MustCompile(`^\d+$`)

var (
	idName      = idPattern.SubexpIndex("name")
	idMarket    = idPattern.SubexpIndex("market")
	idNumber    = idPattern.SubexpIndex("number")
	idWidth     = idPattern.SubexpIndex("width")
	idHeight    = idPattern.SubexpIndex("height")
	idUHD       = idPattern.SubexpIndex("uhd")
	idExtension = idPattern.SubexpIndex("extension")
)

// ID is the structured form of an image id such as
// "OHR.HalfDomeYosemite_EN-US4890007214_UHD.jpg".
//
// Number, Width and Height hold the decimal digits exactly as they appear in
// the id, so sequence numbers of any length and zero padding survive Format.
type ID struct {
	Name string
	// Market is empty for ROW ids and for market tokens that are not supported.
	Market    bing.Market
	Number    string
	UHD       bool
	Width     string // set iff UHD is false
	Height    string // set iff UHD is false
	Extension string
}

// ParseID returns nil when s does not follow the id grammar. A miss is not an
// error: the image is still usable, only structured queries are unavailable.
func ParseID(s string) *ID {
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	id := &ID{
		Name:      m[idName],
		Number:    m[idNumber],
		UHD:       m[idUHD] != "",
		Extension: m[idExtension],
	}

	if token := m[idMarket]; token != rowToken {
		if market, err := bing.ParseMarket(token); err == nil {
			id.Market = market
		}
	}

	if !id.UHD {
		id.Width, id.Height = m[idWidth], m[idHeight]
	}

	return id
}

// Format renders the canonical id string. Market codes are upper-cased and a
// missing market is written as ROW. Non-UHD ids need both dimensions.
func (id ID) Format() (string, error) {
	market := rowToken
	if id.Market != "" {
		market = strings.ToUpper(id.Market.Code())
	}

	if !digitsPattern.MatchString(id.Number) {
		return "", fmt.Errorf("id %q: number %q is not a digit sequence", id.Name, id.Number)
	}

	var size string
	switch {
	case id.UHD:
		size = "UHD"
	case digitsPattern.MatchString(id.Width) && digitsPattern.MatchString(id.Height):
		size = id.Width + "x" + id.Height
	default:
		return "", fmt.Errorf("id %q: non-UHD id without width and height", id.Name)
	}

	return fmt.Sprintf("OHR.%s_%s%s_%s.%s", id.Name, market, id.Number, size, id.Extension), nil
}

// String returns Format's result, or an empty string for an invalid ID.
func (id ID) String() string {
	s, err := id.Format()
	if err != nil {
		return ""
	}
	return s
}
