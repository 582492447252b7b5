package frame

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/disintegration/imaging"

	"scorevid/util"
)

// Renderer crops a fixed-size window around each planned position out
// of the page raster and overlays a two-pixel cursor line centered in
// the frame.
type Renderer struct {
	Width  int
	Height int
	Cursor Color
	OutDir string
	Log    *slog.Logger
}

// Render writes the frames for every page as sequentially numbered
// PNGs (frame0.png, frame1.png, ...) and returns how many it wrote.
// pageImages pairs with plan.Pages by position.
func (r *Renderer) Render(plan *Plan, pageImages []string) (int, error) {
	frameNum := 0
	for pageNum, positions := range plan.Pages {
		if len(positions) == 0 {
			continue
		}
		if pageNum >= len(pageImages) {
			return frameNum, fmt.Errorf("no raster image for page %d", pageNum+1)
		}
		page, err := imaging.Open(pageImages[pageNum])
		if err != nil {
			return frameNum, fmt.Errorf("open page raster %s: %w", pageImages[pageNum], err)
		}
		pageWidth := page.Bounds().Dx()

		for _, pos := range positions {
			// center the window on the position; outside the page the
			// window is padded white so the cursor stays on the note
			left := pos - r.Width/2
			srcLeft := util.Max(0, left)
			srcRight := util.Min(left+r.Width, pageWidth)

			crop := imaging.New(r.Width, r.Height, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			if srcLeft < srcRight {
				window := imaging.Crop(page, image.Rect(srcLeft, 0, srcRight, r.Height))
				crop = imaging.Paste(crop, window, image.Pt(srcLeft-left, 0))
			}

			mid := r.Width / 2
			for y := 0; y < r.Height; y++ {
				crop.Set(mid, y, r.Cursor.NRGBA())
				crop.Set(mid+1, y, r.Cursor.NRGBA())
			}

			path := filepath.Join(r.OutDir, fmt.Sprintf("frame%d.png", frameNum))
			if err := imaging.Save(crop, path); err != nil {
				return frameNum, fmt.Errorf("save frame %d: %w", frameNum, err)
			}
			frameNum++
		}
		r.Log.Info("rendered page frames", "page", pageNum+1, "frames", frameNum)
	}
	return frameNum, nil
}
