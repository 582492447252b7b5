package frame

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestCursorColor(t *testing.T) {
	assert := assert.New(t)

	c, ok := CursorColor("blue")
	assert.True(ok)
	assert.Equal(Color{0, 0, 255}, c)

	c, ok = CursorColor("mauve")
	assert.False(ok)
	assert.Equal(Color{255, 0, 0}, c)
}

func TestColorNRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 165, G: 42, B: 42, A: 255}, Color{165, 42, 42}.NRGBA())
}

func TestRenderWritesSequentialFrames(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	pagePath := filepath.Join(dir, "page.png")
	page := imaging.New(200, 20, color.NRGBA{255, 255, 255, 255})
	assert.NoError(imaging.Save(page, pagePath))

	out := filepath.Join(dir, "frames")
	assert.NoError(os.Mkdir(out, 0o755))

	r := &Renderer{
		Width:  40,
		Height: 20,
		Cursor: Color{255, 0, 0},
		OutDir: out,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	plan := &Plan{Pages: [][]int{{50, 100, 150}}, Total: 3}

	n, err := r.Render(plan, []string{pagePath})
	assert.NoError(err)
	assert.Equal(3, n)

	for i := 0; i < 3; i++ {
		frame, err := imaging.Open(filepath.Join(out, fmt.Sprintf("frame%d.png", i)))
		assert.NoError(err)
		assert.Equal(40, frame.Bounds().Dx())
		assert.Equal(20, frame.Bounds().Dy())

		// the cursor line straddles the frame midpoint
		cr, cg, cb, _ := frame.At(20, 10).RGBA()
		assert.Equal(uint32(0xffff), cr)
		assert.Zero(cg)
		assert.Zero(cb)
	}
}

func TestRenderCursorStaysOnPositionNearPageEdge(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	// black column on the page's left edge as a landmark
	page := imaging.New(200, 20, color.NRGBA{255, 255, 255, 255})
	for y := 0; y < 20; y++ {
		page.Set(0, y, color.NRGBA{0, 0, 0, 255})
	}
	pagePath := filepath.Join(dir, "page.png")
	assert.NoError(imaging.Save(page, pagePath))

	r := &Renderer{
		Width:  40,
		Height: 20,
		Cursor: Color{255, 0, 0},
		OutDir: dir,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	// position 10 is closer to the edge than half the frame width
	plan := &Plan{Pages: [][]int{{10}}, Total: 1}

	n, err := r.Render(plan, []string{pagePath})
	assert.NoError(err)
	assert.Equal(1, n)

	frame, err := imaging.Open(filepath.Join(dir, "frame0.png"))
	assert.NoError(err)
	assert.Equal(40, frame.Bounds().Dx())

	// page x=0 lands at frame x=10, keeping position 10 under the
	// cursor at the frame midpoint
	lr, lg, lb, _ := frame.At(10, 5).RGBA()
	assert.Zero(lr)
	assert.Zero(lg)
	assert.Zero(lb)

	// left of the landmark is white padding, not page content
	pr, pg, pb, _ := frame.At(5, 5).RGBA()
	assert.Equal(uint32(0xffff), pr)
	assert.Equal(uint32(0xffff), pg)
	assert.Equal(uint32(0xffff), pb)

	cr, cg, cb, _ := frame.At(20, 5).RGBA()
	assert.Equal(uint32(0xffff), cr)
	assert.Zero(cg)
	assert.Zero(cb)
}

func TestRenderSkipsEmptyPages(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	pagePath := filepath.Join(dir, "page.png")
	assert.NoError(imaging.Save(imaging.New(200, 20, color.NRGBA{255, 255, 255, 255}), pagePath))

	r := &Renderer{
		Width: 40, Height: 20, Cursor: Color{255, 0, 0}, OutDir: dir,
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	plan := &Plan{Pages: [][]int{nil, {100}}, Total: 1}

	n, err := r.Render(plan, []string{pagePath, pagePath})
	assert.NoError(err)
	assert.Equal(1, n)
}

func TestRenderMissingRaster(t *testing.T) {
	r := &Renderer{
		Width: 40, Height: 20, OutDir: t.TempDir(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	plan := &Plan{Pages: [][]int{{100}}, Total: 1}

	_, err := r.Render(plan, nil)
	assert.Error(t, err)
}
