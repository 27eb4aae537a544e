package sample

import (
	"errors"
	"math"
	"testing"

	img "refstudio/internal/image"
	"refstudio/pkg/geometry"
)

func placement(x, y, sx, sy float64, w, h int) geometry.LayerPlacement {
	return geometry.LayerPlacement{
		Position: geometry.Point2D{X: x, Y: y},
		ScaleX:   sx,
		ScaleY:   sy,
		Width:    w,
		Height:   h,
	}
}

// checkerBuffer alternates 0 and 255 in every channel.
func checkerBuffer(t *testing.T, w, h int) *img.Buffer {
	t.Helper()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			i := (y*w + x) * 4
			pix[i], pix[i+1], pix[i+2] = v, v, v
			pix[i+3] = 255
		}
	}
	b, err := img.NewBuffer(w, h, img.FormatNRGBA, pix)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestAnalyzeRegionStats(t *testing.T) {
	buf := checkerBuffer(t, 4, 4)

	stats, err := AnalyzeRegion(buf, geometry.RectInt{X: 0, Y: 0, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("AnalyzeRegion() error: %v", err)
	}
	if stats.Pixels != 16 {
		t.Errorf("Pixels = %d, want 16", stats.Pixels)
	}
	if math.Abs(stats.R.Mean-127.5) > 1e-9 {
		t.Errorf("R.Mean = %g, want 127.5", stats.R.Mean)
	}
	if stats.R.Min != 0 || stats.R.Max != 255 {
		t.Errorf("R min/max = %d/%d, want 0/255", stats.R.Min, stats.R.Max)
	}
	if stats.A.Mean != 255 || stats.A.StdDev != 0 {
		t.Errorf("A = %+v, want constant 255", stats.A)
	}
	// Half-and-half 0/255 sample standard deviation.
	wantSD := math.Sqrt(255 * 255 * 16 / 4 / 15.0)
	if math.Abs(stats.R.StdDev-wantSD) > 1e-9 {
		t.Errorf("R.StdDev = %g, want %g", stats.R.StdDev, wantSD)
	}
}

func TestAnalyzeRegionClipsToBuffer(t *testing.T) {
	buf := checkerBuffer(t, 4, 4)

	stats, err := AnalyzeRegion(buf, geometry.RectInt{X: -2, Y: -2, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("AnalyzeRegion() error: %v", err)
	}
	if stats.Pixels != 16 {
		t.Errorf("Pixels = %d, want 16 after clipping", stats.Pixels)
	}
}

func TestAnalyzeRegionEmpty(t *testing.T) {
	buf := checkerBuffer(t, 4, 4)

	tests := []struct {
		name   string
		region geometry.RectInt
	}{
		{"zero size", geometry.RectInt{X: 1, Y: 1}},
		{"fully outside", geometry.RectInt{X: 10, Y: 10, Width: 3, Height: 3}},
		{"negative size", geometry.RectInt{X: 1, Y: 1, Width: -2, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AnalyzeRegion(buf, tt.region); !errors.Is(err, ErrEmptyRegion) {
				t.Errorf("AnalyzeRegion() error = %v, want ErrEmptyRegion", err)
			}
		})
	}

	if _, err := AnalyzeRegion(nil, geometry.RectInt{Width: 2, Height: 2}); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("AnalyzeRegion(nil) error = %v, want ErrEmptyRegion", err)
	}
}
