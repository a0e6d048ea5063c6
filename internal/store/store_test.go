package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

func sampleImages() []wallpaper.Image {
	return []wallpaper.Image{
		{
			URL:           "https://www.bing.com/th?id=OHR.HalfDomeYosemite_EN-US4890007214_UHD.jpg",
			StartDate:     "20250102",
			FullStartDate: "202501020800",
			EndDate:       "20250103",
			ID:            "OHR.HalfDomeYosemite_EN-US4890007214_UHD.jpg",
			Copyright:     "Half Dome & friends (© Jane Doe)",
			CopyrightLink: "https://www.bing.com/search?q=Half+Dome",
			Title:         "Half Dome",
			QuizLink:      "https://www.bing.com/search?q=quiz",
			Wallpaper:     true,
			Hash:          "h1",
		},
		{
			URL:           "https://www.bing.com/th?id=OHR.YosemiteFirefall_ROW8895162487_1920x1080.jpg",
			FullStartDate: "202501010800",
			ID:            "OHR.YosemiteFirefall_ROW8895162487_1920x1080.jpg",
			Copyright:     "No attribution",
		},
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("data", "en-US.json"), Path("data", bing.MarketEnUS))
	assert.Equal(t, filepath.Join("data", "zh-CN.json"), Path("data", bing.MarketZhCN))
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "en-US.json")
	images := sampleImages()

	require.NoError(t, Save(path, images))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {"), "pretty printed")
	assert.Contains(t, string(raw), `"full_start_date": "202501020800"`)
	assert.Contains(t, string(raw), "Half Dome & friends", "no HTML escaping")
	assert.NotContains(t, string(raw), "id_parsed")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, images[0].ID, loaded[0].ID)
	assert.Equal(t, images[0].Copyright, loaded[0].Copyright)

	require.NotNil(t, loaded[0].IDParsed, "id is parsed again on load")
	assert.Equal(t, bing.MarketEnUS, loaded[0].IDParsed.Market)
	require.NotNil(t, loaded[0].CopyrightParsed)
	assert.Equal(t, "© Jane Doe", loaded[0].CopyrightParsed.Copyright)
	assert.Nil(t, loaded[1].CopyrightParsed)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}

func TestSaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "de-DE.json")
	require.NoError(t, Save(path, sampleImages()))
	require.NoError(t, Save(path, sampleImages()[:1]))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestSaveNil(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fr-FR.json")
	require.NoError(t, Save(path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))
	_, err = Load(corrupt)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestSaveFailsWhenParentIsAFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := Save(filepath.Join(blocker, "en-US.json"), sampleImages())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))

	var ee *errors.EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errors.PriorityHigh, ee.GetPriority(), "a lost snapshot is reported above transient failures")
}
