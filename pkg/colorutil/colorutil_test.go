package colorutil

import (
	"image/color"
	"math"
	"testing"
)

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{R: 255, G: 10, B: 0, A: 255}); got != "#FF0A00" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestLuminance(t *testing.T) {
	if got := Luminance(color.NRGBA{R: 255, G: 255, B: 255}); got != 255 {
		t.Errorf("Luminance(white) = %g", got)
	}
	if got := Luminance(color.NRGBA{R: 255}); math.Abs(got-76.245) > 1e-9 {
		t.Errorf("Luminance(red) = %g, want 76.245", got)
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		h, s, v float64
	}{
		{"red", 255, 0, 0, 0, 1, 1},
		{"green", 0, 255, 0, 120, 1, 1},
		{"blue", 0, 0, 255, 240, 1, 1},
		{"gray", 128, 128, 128, 0, 0, 128.0 / 255},
		{"black", 0, 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
			if math.Abs(h-tt.h) > 1e-9 || math.Abs(s-tt.s) > 1e-9 || math.Abs(v-tt.v) > 1e-9 {
				t.Errorf("RGBToHSV() = (%g,%g,%g), want (%g,%g,%g)", h, s, v, tt.h, tt.s, tt.v)
			}
		})
	}
}
