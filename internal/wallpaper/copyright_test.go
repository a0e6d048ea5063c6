package wallpaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCopyright(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want *Copyright
	}{
		{
			in:   "Sunrise over the bay (© Jane Doe)",
			want: &Copyright{Description: "Sunrise over the bay", Copyright: "© Jane Doe"},
		},
		{
			in:   "  Padded   (  © Someone/Getty Images )  ",
			want: &Copyright{Description: "Padded", Copyright: "© Someone/Getty Images"},
		},
		{
			in:   "Lake (Canada) at dawn (© Photographer)",
			want: &Copyright{Description: "Lake (Canada) at dawn", Copyright: "© Photographer"},
		},
		{
			in:   "(© Only attribution)",
			want: &Copyright{Description: "", Copyright: "© Only attribution"},
		},
		{in: "No parens here"},
		{in: "Trailing text (© Jane) after"},
		{in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := ParseCopyright(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
