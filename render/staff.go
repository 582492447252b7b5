package render

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// staffLineLength is how many consecutive dark pixels a horizontal run
// needs before it counts as a staff line.
const staffLineLength = 50

func isWhite(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

// topStaffLine finds the left-most pixel of the top line of the first
// staff. Assumes the first staff is not indented further right than
// later staffs.
func topStaffLine(img image.Image) (int, int, bool) {
	bounds := img.Bounds()
	for x := bounds.Min.X; x < bounds.Max.X-staffLineLength; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			run := 0
			for ; run < staffLineLength; run++ {
				if isWhite(img, x+run, y) {
					break
				}
			}
			if run == staffLineLength {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// StaffLines counts the staff lines in the preview image by scanning a
// single column just right of the first line's start, counting
// white-to-dark transitions.
func StaffLines(imagePath string, log *slog.Logger) (int, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return 0, fmt.Errorf("open preview %s: %w", imagePath, err)
	}

	x, top, ok := topStaffLine(img)
	if !ok {
		return 0, fmt.Errorf("no staff line found in %s", imagePath)
	}
	log.Debug("first staff line found", "x", x, "y", top)

	// move right to avoid the barline connecting the staffs
	x += 3

	lines := 0
	newLine := true
	bounds := img.Bounds()
	for y := top; y < bounds.Max.Y; y++ {
		if !isWhite(img, x, y) {
			if newLine {
				newLine = false
				lines++
			}
		} else {
			newLine = true
		}
	}
	return lines, nil
}
