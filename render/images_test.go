package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{255, 255, 255, 255})
	assert.NoError(t, imaging.Save(img, path))
}

func TestCollectPageImagesRenamesAndSorts(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	for _, name := range []string{
		"sanitised-page1.png",
		"sanitised-page2.png",
		"sanitised-page10.png",
		"sanitised.pdf",
		"other.png",
	} {
		assert.NoError(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	images, err := CollectPageImages(dir, discard())
	assert.NoError(err)
	assert.Equal([]string{
		filepath.Join(dir, "sanitised-page0001.png"),
		filepath.Join(dir, "sanitised-page0002.png"),
		filepath.Join(dir, "sanitised-page0010.png"),
	}, images)

	// page 10 no longer sorts before page 2
	_, err = os.Stat(filepath.Join(dir, "sanitised-page10.png"))
	assert.Error(err)
}

func TestCollectPageImagesSinglePage(t *testing.T) {
	dir := t.TempDir()
	// a one-page score renders without the page suffix
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "sanitised.png"), []byte("x"), 0o644))

	images, err := CollectPageImages(dir, discard())
	assert.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sanitised-page0001.png")}, images)
}

func TestCollectPageImagesEmptyDir(t *testing.T) {
	_, err := CollectPageImages(t.TempDir(), discard())
	assert.Error(t, err)
}

func TestImageWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	writePNG(t, path, 320, 40)

	w, err := ImageWidth(path)
	assert.NoError(t, err)
	assert.Equal(t, 320, w)
}
