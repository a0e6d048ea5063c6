package wallpaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	images := []Image{
		{ID: "1", Title: "Half Dome", Copyright: "Yosemite (© Jane Doe)"},
		{ID: "2", Title: "Info", Copyright: "Great Wall of China (© John Roe)"},
		{ID: "3", Title: "Northern lights", Copyright: "Tromsø, Norway (© Kari)"},
	}

	ids := func(in []Image) []string {
		out := make([]string, 0, len(in))
		for i := range in {
			out = append(out, in[i].ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(images, "")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(images, "   ")))
	assert.Equal(t, []string{"1"}, ids(Filter(images, "half")))
	assert.Equal(t, []string{"2"}, ids(Filter(images, "GREAT WALL")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(images, "(©")))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(images, "(© J")))
	assert.Equal(t, []string{"3"}, ids(Filter(images, "TROMSØ")))
	assert.Empty(t, Filter(images, "nothing matches"))
}
