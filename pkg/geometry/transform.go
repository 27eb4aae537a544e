package geometry

import "math"

// LayerPlacement describes where a layer's source image sits in scene space:
// its translation, its per-axis scale factors, and the source dimensions in
// pixels. It is the minimal view of a layer that coordinate mapping needs.
type LayerPlacement struct {
	Position Point2D
	ScaleX   float64
	ScaleY   float64
	Width    int
	Height   int
}

// SceneBounds returns the rectangle the placed layer covers in scene space.
func (p LayerPlacement) SceneBounds() Rect {
	return Rect{
		X:      p.Position.X,
		Y:      p.Position.Y,
		Width:  float64(p.Width) * p.ScaleX,
		Height: float64(p.Height) * p.ScaleY,
	}
}

// ImageCoords maps a point in view space to source-image pixel coordinates
// for the given layer placement. The view transform is the pan/zoom applied
// by the presenting collaborator; its inverse takes the point into scene
// space, subtracting the layer position yields layer-local coordinates, and
// dividing by the per-axis scale recovers original pixel coordinates, which
// are rounded to nearest and clamped to the image bounds.
//
// The second return value is false when the point does not land on the
// layer at all ("no layer under cursor"): the placement has no pixels, a
// scale axis is degenerate, the view transform is singular, or the scene
// point lies outside the layer's scaled bounds.
func ImageCoords(view Point2D, viewTransform AffineTransform, p LayerPlacement) (PointInt, bool) {
	if p.Width <= 0 || p.Height <= 0 || p.ScaleX <= 0 || p.ScaleY <= 0 {
		return PointInt{}, false
	}

	inv, ok := viewTransform.Inverse()
	if !ok {
		return PointInt{}, false
	}
	scene := inv.Apply(view)

	local := scene.Sub(p.Position)
	if !p.SceneBounds().Contains(scene) {
		return PointInt{}, false
	}

	x := int(math.Round(local.X / p.ScaleX))
	y := int(math.Round(local.Y / p.ScaleY))

	// Rounding at the far edge can land one past the last pixel.
	x = clampInt(x, 0, p.Width-1)
	y = clampInt(y, 0, p.Height-1)

	return PointInt{X: x, Y: y}, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
