package bing

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Market is a locale code selecting a regional image feed, e.g. "en-US".
// Only the values returned by Markets are valid; use ParseMarket at input boundaries.
type Market string

const (
	MarketDaDK Market = "da-DK"
	MarketDeAT Market = "de-AT"
	MarketDeCH Market = "de-CH"
	MarketDeDE Market = "de-DE"
	MarketEnAU Market = "en-AU"
	MarketEnCA Market = "en-CA"
	MarketEnGB Market = "en-GB"
	MarketEnID Market = "en-ID"
	MarketEnIN Market = "en-IN"
	MarketEnMY Market = "en-MY"
	MarketEnNZ Market = "en-NZ"
	MarketEnPH Market = "en-PH"
	MarketEnUS Market = "en-US"
	MarketEnZA Market = "en-ZA"
	MarketEsAR Market = "es-AR"
	MarketEsCL Market = "es-CL"
	MarketEsES Market = "es-ES"
	MarketEsMX Market = "es-MX"
	MarketEsUS Market = "es-US"
	MarketFiFI Market = "fi-FI"
	MarketFrBE Market = "fr-BE"
	MarketFrCA Market = "fr-CA"
	MarketFrCH Market = "fr-CH"
	MarketFrFR Market = "fr-FR"
	MarketItIT Market = "it-IT"
	MarketJaJP Market = "ja-JP"
	MarketKoKR Market = "ko-KR"
	MarketNlBE Market = "nl-BE"
	MarketNlNL Market = "nl-NL"
	MarketNoNO Market = "no-NO"
	MarketPlPL Market = "pl-PL"
	MarketPtBR Market = "pt-BR"
	MarketRuRU Market = "ru-RU"
	MarketSvSE Market = "sv-SE"
	MarketTrTR Market = "tr-TR"
	MarketZhCN Market = "zh-CN"
	MarketZhHK Market = "zh-HK"
	MarketZhTW Market = "zh-TW"
)

// DefaultMarket is used when no market is configured.
const DefaultMarket = MarketEnUS

var allMarkets = []Market{
	MarketDaDK, MarketDeAT, MarketDeCH, MarketDeDE,
	MarketEnAU, MarketEnCA, MarketEnGB, MarketEnID, MarketEnIN, MarketEnMY,
	MarketEnNZ, MarketEnPH, MarketEnUS, MarketEnZA,
	MarketEsAR, MarketEsCL, MarketEsES, MarketEsMX, MarketEsUS,
	MarketFiFI, MarketFrBE, MarketFrCA, MarketFrCH, MarketFrFR,
	MarketItIT, MarketJaJP, MarketKoKR, MarketNlBE, MarketNlNL, MarketNoNO,
	MarketPlPL, MarketPtBR, MarketRuRU, MarketSvSE, MarketTrTR,
	MarketZhCN, MarketZhHK, MarketZhTW,
}

// lookup is keyed by lower-cased code
var marketsByCode = func() map[string]Market {
	m := make(map[string]Market, len(allMarkets))
	for _, market := range allMarkets {
		m[strings.ToLower(string(market))] = market
	}
	return m
}()

// Markets returns every supported market in canonical order.
func Markets() []Market {
	return slices.Clone(allMarkets)
}

// ParseMarket matches s against the supported markets, ignoring case.
func ParseMarket(s string) (Market, error) {
	if m, ok := marketsByCode[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown market %q", s)
}

// Valid reports whether m is one of the supported markets.
func (m Market) Valid() bool {
	_, ok := marketsByCode[strings.ToLower(string(m))]
	return ok
}

// Code returns the canonical mixed-case code used in queries and file names.
func (m Market) Code() string { return string(m) }

func (m Market) String() string { return string(m) }

// Tag returns the BCP 47 tag for the market.
func (m Market) Tag() language.Tag {
	return language.Make(string(m))
}

// DisplayName returns the market's name in English, e.g. "English (United States)".
func (m Market) DisplayName() string {
	return display.Tags(language.English).Name(m.Tag())
}

// NativeName returns the market's name in its own language.
func (m Market) NativeName() string {
	return display.Self.Name(m.Tag())
}

// MarshalText implements encoding.TextMarshaler.
func (m Market) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown codes.
func (m *Market) UnmarshalText(text []byte) error {
	parsed, err := ParseMarket(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
