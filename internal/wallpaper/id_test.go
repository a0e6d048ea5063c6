package wallpaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhluo/xpic/pkg/bing"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ID
	}{
		{
			in: "OHR.YosemiteFirefall_ROW8895162487_1920x1080.jpg",
			want: ID{
				Name: "YosemiteFirefall", Number: "8895162487",
				Width: "1920", Height: "1080", Extension: "jpg",
			},
		},
		{
			in: "OHR.HalfDomeYosemite_EN-US4890007214_UHD.jpg",
			want: ID{
				Name: "HalfDomeYosemite", Market: bing.MarketEnUS, Number: "4890007214",
				UHD: true, Extension: "jpg",
			},
		},
		{
			in: "OHR.Great_Wall_ZH-CN1234_UHD.png",
			want: ID{
				Name: "Great_Wall", Market: bing.MarketZhCN, Number: "1234",
				UHD: true, Extension: "png",
			},
		},
		{
			in: "OHR.Name_ROW123456789012345678901234_UHD.jpg",
			want: ID{
				Name: "Name", Number: "123456789012345678901234",
				UHD: true, Extension: "jpg",
			},
		},
		{
			in: "OHR.Name_EN-US0042_UHD.jpg",
			want: ID{
				Name: "Name", Market: bing.MarketEnUS, Number: "0042",
				UHD: true, Extension: "jpg",
			},
		},
		{
			in: "OHR.Name_ROW1_0x0.jpg",
			want: ID{
				Name: "Name", Number: "1",
				Width: "0", Height: "0", Extension: "jpg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got := ParseID(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)

			formatted, err := got.Format()
			require.NoError(t, err)
			assert.Equal(t, tt.in, formatted, "round trip")
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseID_UnknownMarketIsPartialParse(t *testing.T) {
	t.Parallel()

	got := ParseID("OHR.Somewhere_XX-YY42_800x600.jpg")
	require.NotNil(t, got)
	assert.Empty(t, got.Market)
	assert.Equal(t, "Somewhere", got.Name)
	assert.Equal(t, "42", got.Number)
	assert.Equal(t, "800", got.Width)
}

func TestParseID_Misses(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"not an id",
		"OHR.Name_EN-US123_UHD",
		"OHR.Name_EN-US_UHD.jpg",
		"OHR.Name_EN-US123_1920.jpg",
		"XYZ.Name_EN-US123_UHD.jpg",
		"OHR.Name_ENUS123_UHD.jpg",
		"OHR.Name_ROW-1_UHD.jpg",
		"prefix OHR.Name_ROW1_UHD.jpg",
	} {
		assert.Nil(t, ParseID(in), in)
	}
}

func TestIDFormat_RequiresDimensions(t *testing.T) {
	t.Parallel()

	id := ID{Name: "NoSize", Number: "1", Extension: "jpg"}
	_, err := id.Format()
	require.Error(t, err)
	assert.Empty(t, id.String())

	id.Width = "1920"
	_, err = id.Format()
	require.Error(t, err, "height is still missing")

	id.Height = "10a"
	_, err = id.Format()
	require.Error(t, err, "height must be digits")
}

func TestIDFormat_RequiresNumber(t *testing.T) {
	t.Parallel()

	_, err := ID{Name: "NoNumber", UHD: true, Extension: "jpg"}.Format()
	require.Error(t, err)
}

func TestIDRoundTripSynthetic(t *testing.T) {
	t.Parallel()

	for _, m := range bing.Markets() {
		for _, id := range []ID{
			{Name: "Synthetic", Market: m, Number: "1", UHD: true, Extension: "jpg"},
			{Name: "Synthetic_2", Market: m, Number: "184467440737095516150001", Width: "1366", Height: "768", Extension: "webp"},
			{Name: "Row", Number: "007", Width: "0", Height: "01", Extension: "jpg"},
		} {
			s, err := id.Format()
			require.NoError(t, err)

			parsed := ParseID(s)
			require.NotNil(t, parsed, s)
			assert.Equal(t, id, *parsed)

			again, err := parsed.Format()
			require.NoError(t, err)
			assert.Equal(t, s, again)
		}
	}
}
