package frame

import "image/color"

// Color is a named cursor line color.
type Color struct {
	R, G, B uint8
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

var cursorColors = map[string]Color{
	"black":  {0, 0, 0},
	"yellow": {255, 255, 0},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"brown":  {165, 42, 42},
}

// CursorColor resolves a color name. The second return is false for
// unknown names, in which case the default red is returned.
func CursorColor(name string) (Color, bool) {
	if c, ok := cursorColors[name]; ok {
		return c, true
	}
	return cursorColors["red"], false
}
