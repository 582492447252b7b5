package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TitleFrames renders the title screen (song name above, composer
// below) and writes fps*seconds identical frames into dir.
func TitleFrames(dir, title, composer string, width, height, fps, seconds int, log *slog.Logger) (int, error) {
	screen := imaging.New(width, height, color.White)

	d := &font.Drawer{
		Dst:  screen,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	drawCentered := func(text string, y int) {
		w := d.MeasureString(text)
		d.Dot = fixed.P(width/2-w.Ceil()/2, y)
		d.DrawString(text)
	}
	drawCentered(title, height/2-height/25)
	drawCentered(composer, height/2+height/25)

	total := fps * seconds
	log.Info("generating title frames", "frames", total)
	for i := 0; i < total; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame%d.png", i))
		if err := imaging.Save(screen, path); err != nil {
			return i, fmt.Errorf("save title frame %d: %w", i, err)
		}
	}
	return total, nil
}
