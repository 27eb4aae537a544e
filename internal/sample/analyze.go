package sample

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	img "refstudio/internal/image"
	"refstudio/pkg/geometry"
)

// ErrEmptyRegion is returned when a region to analyze contains no pixels.
var ErrEmptyRegion = errors.New("region contains no pixels")

// ChannelStats summarizes one color channel over a region.
type ChannelStats struct {
	Mean   float64
	StdDev float64
	Min    uint8
	Max    uint8
}

// RegionStats summarizes a rectangular region of a layer's source image.
type RegionStats struct {
	Pixels     int
	R, G, B, A ChannelStats
}

// AnalyzeRegion computes per-channel statistics over the intersection of
// the given image-space rectangle and the buffer. The rectangle uses
// source-pixel coordinates, unaffected by layer placement.
func AnalyzeRegion(buf *img.Buffer, region geometry.RectInt) (RegionStats, error) {
	if buf == nil {
		return RegionStats{}, ErrEmptyRegion
	}
	x0, y0 := region.X, region.Y
	x1, y1 := region.X+region.Width, region.Y+region.Height
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > buf.Width() {
		x1 = buf.Width()
	}
	if y1 > buf.Height() {
		y1 = buf.Height()
	}
	if x0 >= x1 || y0 >= y1 {
		return RegionStats{}, ErrEmptyRegion
	}

	n := (x1 - x0) * (y1 - y0)
	channels := [4][]float64{
		make([]float64, 0, n),
		make([]float64, 0, n),
		make([]float64, 0, n),
		make([]float64, 0, n),
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c := buf.At(x, y)
			channels[0] = append(channels[0], float64(c.R))
			channels[1] = append(channels[1], float64(c.G))
			channels[2] = append(channels[2], float64(c.B))
			channels[3] = append(channels[3], float64(c.A))
		}
	}

	out := RegionStats{Pixels: n}
	for i, dst := range []*ChannelStats{&out.R, &out.G, &out.B, &out.A} {
		*dst = channelStats(channels[i])
	}
	return out, nil
}

func channelStats(values []float64) ChannelStats {
	cs := ChannelStats{Mean: stat.Mean(values, nil), Min: 255, Max: 0}
	if len(values) > 1 {
		cs.StdDev = stat.StdDev(values, nil)
	}
	for _, v := range values {
		b := uint8(v)
		if b < cs.Min {
			cs.Min = b
		}
		if b > cs.Max {
			cs.Max = b
		}
	}
	return cs
}
