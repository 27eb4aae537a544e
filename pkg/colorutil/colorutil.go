// Package colorutil provides shared color utilities for sampling and
// display.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
)

// Hex formats a color as an uppercase #RRGGBB string.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Luminance returns the Rec. 601 luma of a color in 0-255.
func Luminance(c color.NRGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// RGBToHSV converts RGB (0-255) to HSV with H in 0-360, S and V in 0-1.
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC

	if maxC == 0 {
		s = 0
	} else {
		s = diff / maxC
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}
