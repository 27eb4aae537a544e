package image

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Flatten composites every visible layer of the stack, bottom to top, into a
// single image covering the union of the layers' scene bounds. Each layer is
// resampled by its per-axis scale (Catmull-Rom) and blended with its opacity.
// Returns nil when no visible layer has pixels.
func Flatten(s *Stack) *image.NRGBA {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	any := false
	for _, l := range s.layers {
		if !l.visible || l.buf == nil {
			continue
		}
		b := l.Placement().SceneBounds()
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.X+b.Width)
		maxY = math.Max(maxY, b.Y+b.Height)
		any = true
	}
	if !any {
		return nil
	}

	width := int(math.Ceil(maxX - minX))
	height := int(math.Ceil(maxY - minY))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for _, l := range s.layers {
		if !l.visible || l.buf == nil {
			continue
		}
		flattenLayer(dst, l, minX, minY)
	}
	return dst
}

// flattenLayer scales one layer into place and blends it over dst with the
// layer's opacity.
func flattenLayer(dst *image.NRGBA, l *Layer, originX, originY float64) {
	scaledW := int(math.Round(float64(l.Width()) * l.scaleX))
	scaledH := int(math.Round(float64(l.Height()) * l.scaleY))
	if scaledW < 1 || scaledH < 1 {
		return
	}

	src := l.buf.ToImage()
	scaled := src
	if scaledW != l.Width() || scaledH != l.Height() {
		tmp := image.NewNRGBA(image.Rect(0, 0, scaledW, scaledH))
		xdraw.CatmullRom.Scale(tmp, tmp.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		scaled = tmp
	}

	offset := image.Pt(int(math.Round(l.x-originX)), int(math.Round(l.y-originY)))
	target := image.Rect(0, 0, scaledW, scaledH).Add(offset)

	alpha := uint8(clamp(l.opacity, 0, 1) * 255)
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(dst, target, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
