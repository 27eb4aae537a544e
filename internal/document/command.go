package document

import (
	img "refstudio/internal/image"
)

// Command is one recorded, invertible edit. Each variant carries everything
// needed to undo and redo itself without consulting other history entries.
type Command interface {
	// Name returns the command tag used in logs.
	Name() string
}

// AddLayerCmd records a layer added at an index.
type AddLayerCmd struct {
	Layer *img.Layer
	Index int
}

func (AddLayerCmd) Name() string { return "add_layer" }

// RemoveLayerCmd records a layer removed from an index. The command retains
// the layer so undo can resurrect it in place.
type RemoveLayerCmd struct {
	Layer *img.Layer
	Index int
}

func (RemoveLayerCmd) Name() string { return "remove_layer" }

// MoveLayerCmd records a z-order move.
type MoveLayerCmd struct {
	From, To int
}

func (MoveLayerCmd) Name() string { return "move_layer" }

// ScaleLayerCmd records a scale change with both endpoint values.
type ScaleLayerCmd struct {
	LayerID    string
	OldX, OldY float64
	NewX, NewY float64
}

func (ScaleLayerCmd) Name() string { return "scale_layer" }

// VisibilityCmd records a visibility toggle.
type VisibilityCmd struct {
	LayerID  string
	Old, New bool
}

func (VisibilityCmd) Name() string { return "visibility" }

// FilterCmd records a destructive pixel filter. It retains both the
// pre-filter and post-filter buffers; undo and redo swap between them.
type FilterCmd struct {
	LayerID string
	Filter  string
	Prev    *img.Buffer
	Next    *img.Buffer
}

func (FilterCmd) Name() string { return "filter" }
