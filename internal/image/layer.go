package image

import (
	"errors"
	"image/color"
	"path/filepath"

	"github.com/google/uuid"

	"refstudio/pkg/geometry"
)

// MinScale is the smallest per-axis scale factor a layer accepts.
const MinScale = 0.1

// ErrLayerLocked is returned when a mutation is refused because the layer is
// locked. Visibility changes are still allowed on locked layers.
var ErrLayerLocked = errors.New("layer is locked")

// Layer pairs a raster buffer with its placement and visual state within the
// document. The zero value is not usable; create layers with NewLayer or
// Load.
type Layer struct {
	id   string
	name string
	buf  *Buffer

	x, y           float64
	scaleX, scaleY float64
	opacity        float64
	visible        bool
	locked         bool

	// z mirrors the layer's index in its stack; the stack maintains it.
	z int
}

// NewLayer creates an empty layer with default placement.
func NewLayer(name string) *Layer {
	return &Layer{
		id:      uuid.NewString(),
		name:    name,
		scaleX:  1,
		scaleY:  1,
		opacity: 1,
		visible: true,
	}
}

// Load reads an image file into a new layer named after the file.
func Load(path string) (*Layer, error) {
	buf, err := Decode(path)
	if err != nil {
		return nil, err
	}
	l := NewLayer(filepath.Base(path))
	l.buf = buf
	return l, nil
}

// Restore rebuilds a layer from deserialized state; document load uses it.
func Restore(name string, buf *Buffer, x, y, sx, sy, opacity float64, visible, locked bool) *Layer {
	l := NewLayer(name)
	l.buf = buf
	l.x, l.y = x, y
	l.restoreScale(sx, sy)
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	l.opacity = opacity
	l.visible = visible
	l.locked = locked
	return l
}

// ID returns the layer's unique identifier.
func (l *Layer) ID() string { return l.id }

// Name returns the layer's display name.
func (l *Layer) Name() string { return l.name }

// SetName renames the layer.
func (l *Layer) SetName(name string) { l.name = name }

// Buffer returns the layer's current raster buffer, which may be nil for an
// empty layer.
func (l *Layer) Buffer() *Buffer { return l.buf }

// SetBuffer replaces the layer's raster wholesale. The old buffer is
// released unless something else (a history command) retains it.
func (l *Layer) SetBuffer(buf *Buffer) { l.buf = buf }

// Position returns the layer's placement translation in scene space.
func (l *Layer) Position() geometry.Point2D { return geometry.Point2D{X: l.x, Y: l.y} }

// SetPosition moves the layer. Refused while locked.
func (l *Layer) SetPosition(x, y float64) error {
	if l.locked {
		return ErrLayerLocked
	}
	l.x, l.y = x, y
	return nil
}

// Scale returns the per-axis scale factors.
func (l *Layer) Scale() (sx, sy float64) { return l.scaleX, l.scaleY }

// SetScale sets the per-axis scale factors, clamped to MinScale. Refused
// while locked.
func (l *Layer) SetScale(sx, sy float64) error {
	if l.locked {
		return ErrLayerLocked
	}
	l.restoreScale(sx, sy)
	return nil
}

// RestoreScale reapplies a historical scale, bypassing the lock check.
// History inversion is the only intended caller.
func (l *Layer) RestoreScale(sx, sy float64) { l.restoreScale(sx, sy) }

func (l *Layer) restoreScale(sx, sy float64) {
	if sx < MinScale {
		sx = MinScale
	}
	if sy < MinScale {
		sy = MinScale
	}
	l.scaleX, l.scaleY = sx, sy
}

// Opacity returns the layer opacity in [0,1].
func (l *Layer) Opacity() float64 { return l.opacity }

// SetOpacity sets the opacity, clamped to [0,1]. Refused while locked.
func (l *Layer) SetOpacity(opacity float64) error {
	if l.locked {
		return ErrLayerLocked
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	l.opacity = opacity
	return nil
}

// Visible returns the layer visibility.
func (l *Layer) Visible() bool { return l.visible }

// SetVisible toggles visibility. Allowed even while locked.
func (l *Layer) SetVisible(visible bool) { l.visible = visible }

// Locked returns the lock state.
func (l *Layer) Locked() bool { return l.locked }

// SetLocked toggles the lock state.
func (l *Layer) SetLocked(locked bool) { l.locked = locked }

// Z returns the layer's z-order value, equal to its index in the stack.
func (l *Layer) Z() int { return l.z }

// Width returns the source image width in pixels, 0 for an empty layer.
func (l *Layer) Width() int {
	if l.buf == nil {
		return 0
	}
	return l.buf.Width()
}

// Height returns the source image height in pixels, 0 for an empty layer.
func (l *Layer) Height() int {
	if l.buf == nil {
		return 0
	}
	return l.buf.Height()
}

// Placement returns the geometric placement used for coordinate mapping.
func (l *Layer) Placement() geometry.LayerPlacement {
	return geometry.LayerPlacement{
		Position: geometry.Point2D{X: l.x, Y: l.y},
		ScaleX:   l.scaleX,
		ScaleY:   l.scaleY,
		Width:    l.Width(),
		Height:   l.Height(),
	}
}

// PixelAt returns the source pixel color at the given image coordinates.
func (l *Layer) PixelAt(x, y int) color.NRGBA {
	if l.buf == nil {
		return color.NRGBA{A: 255}
	}
	return l.buf.At(x, y)
}

// Duplicate returns a deep copy of the layer offset by (20,20), named after
// the original. The copy gets a fresh id and starts unlocked.
func (l *Layer) Duplicate() *Layer {
	dup := NewLayer(l.name + " (Copy)")
	if l.buf != nil {
		dup.buf = l.buf.Clone()
	}
	dup.x = l.x + 20
	dup.y = l.y + 20
	dup.scaleX = l.scaleX
	dup.scaleY = l.scaleY
	dup.opacity = l.opacity
	dup.visible = l.visible
	return dup
}
