package bing

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultNumber is the number of images requested when none is set.
const DefaultNumber = 8

// Query holds the HPImageArchive parameters. Build one with NewQuery; the
// zero value leaves format, market and uhd unset.
type Query struct {
	Format Format // format, omitted when empty
	Index  int    // idx, zero-based day offset
	Number int    // n
	Market Market // mkt, omitted when empty
	UHD    *bool  // uhd, omitted when nil
}

// QueryOption customizes a Query created by NewQuery.
type QueryOption func(*Query)

// WithFormat sets the response format.
func WithFormat(f Format) QueryOption {
	return func(q *Query) { q.Format = f }
}

// WithIndex sets the day offset, 0 being today.
func WithIndex(idx int) QueryOption {
	return func(q *Query) { q.Index = idx }
}

// WithNumber sets how many images to request.
func WithNumber(n int) QueryOption {
	return func(q *Query) { q.Number = n }
}

// WithMarket selects the regional feed.
func WithMarket(m Market) QueryOption {
	return func(q *Query) { q.Market = m }
}

// WithUHD requests UHD image URLs.
func WithUHD(uhd bool) QueryOption {
	return func(q *Query) { q.UHD = &uhd }
}

// NewQuery returns a Query with the service defaults (js, idx 0, n 8, en-US, uhd)
// and then applies opts.
func NewQuery(opts ...QueryOption) Query {
	uhd := true
	q := Query{
		Format: FormatJSON,
		Index:  0,
		Number: DefaultNumber,
		Market: DefaultMarket,
		UHD:    &uhd,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Encode serializes the query in the fixed order format, idx, n, mkt, uhd.
func (q Query) Encode() string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	if q.Format != "" {
		add("format", string(q.Format))
	}
	add("idx", strconv.Itoa(q.Index))
	add("n", strconv.Itoa(q.Number))
	if q.Market != "" {
		add("mkt", q.Market.Code())
	}
	if q.UHD != nil {
		add("uhd", boolDigit(*q.UHD))
	}
	return b.String()
}

func boolDigit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
