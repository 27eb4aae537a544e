package sample

import (
	"image/color"

	"refstudio/pkg/geometry"
)

// Key identifies one resolved sampling target. Two probes hit the same cache
// slot only when they resolve to the same source pixel of the same layer
// under the same placement; moving or rescaling the layer, or a view change
// that lands the cursor on another pixel, produces fresh keys and the old
// entries age out.
type Key struct {
	PixelX, PixelY int
	LayerID        string
	PosX, PosY     float64
	ScaleX, ScaleY float64
}

// NewKey builds a cache key for a mapped source pixel against the layer's
// current placement.
func NewKey(pixel geometry.PointInt, layerID string, p geometry.LayerPlacement) Key {
	return Key{
		PixelX:  pixel.X,
		PixelY:  pixel.Y,
		LayerID: layerID,
		PosX:    p.Position.X,
		PosY:    p.Position.Y,
		ScaleX:  p.ScaleX,
		ScaleY:  p.ScaleY,
	}
}

// Sample is a resolved color probe: the pixel color and the image-space
// coordinates it was read from.
type Sample struct {
	Color color.NRGBA
	Point geometry.PointInt
}
