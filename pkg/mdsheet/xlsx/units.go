package xlsx

import "math"

// Excel measures column widths in characters of the default font. At 96 DPI one character
// of Calibri 11 is 7 pixels wide and every column carries 5 pixels of padding.
const (
	pixelsPerChar = 7
	paddingPixels = 5
)

// PixelsToWidth converts a pixel width into Excel character units.
func PixelsToWidth(px float64) float64 {
	if px <= paddingPixels {
		return 0
	}
	return (px - paddingPixels) / pixelsPerChar
}

// WidthToPixels converts Excel character units into whole pixels.
func WidthToPixels(width float64) float64 {
	if width <= 0 {
		return 0
	}
	return math.Round(width*pixelsPerChar + paddingPixels)
}
