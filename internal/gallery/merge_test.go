package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fhluo/xpic/internal/wallpaper"
)

func img(id, fullStartDate string) wallpaper.Image {
	return wallpaper.Image{ID: id, FullStartDate: fullStartDate}
}

func ids(images []wallpaper.Image) []string {
	out := make([]string, len(images))
	for i := range images {
		out[i] = images[i].ID
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []wallpaper.Image
		incoming []wallpaper.Image
		want     []string
	}{
		{
			name: "both empty",
			want: []string{},
		},
		{
			name:     "sorts newest first",
			existing: []wallpaper.Image{img("a", "202501010800"), img("c", "202501030800")},
			incoming: []wallpaper.Image{img("b", "202501020800")},
			want:     []string{"c", "b", "a"},
		},
		{
			name:     "drops duplicates",
			existing: []wallpaper.Image{img("a", "202501010800"), img("b", "202501020800")},
			incoming: []wallpaper.Image{img("b", "202501020800"), img("b", "202501020800")},
			want:     []string{"b", "a"},
		},
		{
			name:     "only existing",
			existing: []wallpaper.Image{img("a", "202412310800"), img("b", "202501010800")},
			want:     []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(Merge(tt.existing, tt.incoming)))
		})
	}
}

func TestMerge_IncomingWinsOnCollision(t *testing.T) {
	t.Parallel()

	old := img("a", "202501010800")
	old.Title = "old"
	fresh := img("a", "202501010800")
	fresh.Title = "fresh"

	merged := Merge([]wallpaper.Image{old}, []wallpaper.Image{fresh})
	assert.Len(t, merged, 1)
	assert.Equal(t, "fresh", merged[0].Title)
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	t.Parallel()

	existing := []wallpaper.Image{img("a", "202501010800"), img("b", "202501020800")}
	incoming := []wallpaper.Image{img("c", "202501030800")}

	_ = Merge(existing, incoming)
	assert.Equal(t, []string{"a", "b"}, ids(existing))
	assert.Equal(t, []string{"c"}, ids(incoming))
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	list := []wallpaper.Image{img("a", "202501010800"), img("b", "202501020800")}
	once := Merge(nil, list)
	assert.Equal(t, ids(once), ids(Merge(once, once)))
}
