// Package document ties the layer stack to a bounded command history,
// exposing the reversible edit operations and canvas file persistence.
package document

import (
	"errors"
	"fmt"
	"log/slog"

	"refstudio/internal/history"
	img "refstudio/internal/image"
)

// ErrNoLayer is returned when an operation names a layer that is not in the
// document.
var ErrNoLayer = errors.New("no such layer")

// Document is the editable state: an ordered layer stack plus the history
// of reversible edits. Not safe for concurrent use; the controlling thread
// owns it, and background workers hand their results back through
// ApplyFilterResult.
type Document struct {
	stack   *img.Stack
	history *history.Stack[Command]
	log     *slog.Logger

	path     string
	modified bool
}

// New creates an empty document. historyCap bounds the undo stack; zero
// selects the default. A nil logger discards log output.
func New(historyCap int, log *slog.Logger) *Document {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Document{
		stack:   img.NewStack(),
		history: history.New[Command](historyCap),
		log:     log,
	}
}

// Stack exposes the layer stack for read access and composition.
func (d *Document) Stack() *img.Stack { return d.stack }

// Path returns the canvas file this document was loaded from or saved to,
// or "" for an unsaved document.
func (d *Document) Path() string { return d.path }

// Modified reports whether the document changed since the last save or load.
func (d *Document) Modified() bool { return d.modified }

// CanUndo reports whether there is an edit to undo.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether there is an undone edit to redo.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// AddLayer appends a layer on top of the stack, makes it the active layer,
// and records the edit.
func (d *Document) AddLayer(l *img.Layer) {
	index := d.stack.Add(l)
	d.stack.SetActive(index)
	d.record(AddLayerCmd{Layer: l, Index: index})
}

// ImportLayer loads an image file as a new top layer.
func (d *Document) ImportLayer(path string) (*img.Layer, error) {
	l, err := img.Load(path)
	if err != nil {
		return nil, err
	}
	d.AddLayer(l)
	return l, nil
}

// RemoveLayer detaches the layer at the given index and records the edit.
func (d *Document) RemoveLayer(index int) (*img.Layer, error) {
	l, err := d.stack.Remove(index)
	if err != nil {
		return nil, err
	}
	d.record(RemoveLayerCmd{Layer: l, Index: index})
	return l, nil
}

// MoveLayer changes a layer's z-order and records the edit.
func (d *Document) MoveLayer(from, to int) error {
	if from == to {
		return nil
	}
	if err := d.stack.Move(from, to); err != nil {
		return err
	}
	d.record(MoveLayerCmd{From: from, To: to})
	return nil
}

// ScaleLayer sets a layer's per-axis scale and records the edit with the
// clamped values actually applied.
func (d *Document) ScaleLayer(id string, sx, sy float64) error {
	l, _ := d.stack.ByID(id)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrNoLayer, id)
	}
	oldX, oldY := l.Scale()
	if err := l.SetScale(sx, sy); err != nil {
		return err
	}
	newX, newY := l.Scale()
	if newX == oldX && newY == oldY {
		return nil
	}
	d.record(ScaleLayerCmd{LayerID: id, OldX: oldX, OldY: oldY, NewX: newX, NewY: newY})
	return nil
}

// SetVisibility toggles a layer's visibility and records the edit. A toggle
// to the current value records nothing.
func (d *Document) SetVisibility(id string, visible bool) error {
	l, _ := d.stack.ByID(id)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrNoLayer, id)
	}
	if l.Visible() == visible {
		return nil
	}
	old := l.Visible()
	l.SetVisible(visible)
	d.record(VisibilityCmd{LayerID: id, Old: old, New: visible})
	return nil
}

// DuplicateLayer copies the layer at the given index onto the top of the
// stack, offset so the copy is visibly distinct, and records the edit as an
// add.
func (d *Document) DuplicateLayer(index int) (*img.Layer, error) {
	src := d.stack.Layer(index)
	if src == nil {
		return nil, img.ErrIndexOutOfRange
	}
	dup := src.Duplicate()
	d.AddLayer(dup)
	return dup, nil
}

// ApplyFilterResult installs a filtered buffer on a layer, recording the
// edit with both the previous and new pixels. The pipeline consumer calls
// this once a result has been checked as current.
func (d *Document) ApplyFilterResult(id, filterName string, next *img.Buffer) error {
	l, _ := d.stack.ByID(id)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrNoLayer, id)
	}
	prev := l.Buffer()
	l.SetBuffer(next)
	d.record(FilterCmd{LayerID: id, Filter: filterName, Prev: prev, Next: next})
	return nil
}

// Flatten composites the visible layers into a single image.
func (d *Document) Flatten() *img.Buffer {
	flat := img.Flatten(d.stack)
	if flat == nil {
		return nil
	}
	return img.FromImage(flat)
}

// Undo reverts the most recent edit. Returns the undone command and false
// when there was nothing to undo.
func (d *Document) Undo() (Command, bool) {
	cmd, ok := d.history.Undo()
	if !ok {
		return nil, false
	}
	d.invert(cmd)
	d.modified = true
	d.log.Debug("undo", "command", cmd.Name())
	return cmd, true
}

// Redo re-applies the most recently undone edit. Returns the redone command
// and false when there was nothing to redo.
func (d *Document) Redo() (Command, bool) {
	cmd, ok := d.history.Redo()
	if !ok {
		return nil, false
	}
	d.replay(cmd)
	d.modified = true
	d.log.Debug("redo", "command", cmd.Name())
	return cmd, true
}

func (d *Document) record(cmd Command) {
	d.history.Record(cmd)
	d.modified = true
	d.log.Debug("edit recorded", "command", cmd.Name())
}

// invert applies the reverse of a command to the stack.
func (d *Document) invert(cmd Command) {
	switch c := cmd.(type) {
	case AddLayerCmd:
		if _, index := d.stack.ByID(c.Layer.ID()); index >= 0 {
			d.stack.Remove(index)
		}
	case RemoveLayerCmd:
		d.stack.Insert(c.Index, c.Layer)
	case MoveLayerCmd:
		d.stack.Move(c.To, c.From)
	case ScaleLayerCmd:
		if l, _ := d.stack.ByID(c.LayerID); l != nil {
			l.RestoreScale(c.OldX, c.OldY)
		}
	case VisibilityCmd:
		if l, _ := d.stack.ByID(c.LayerID); l != nil {
			l.SetVisible(c.Old)
		}
	case FilterCmd:
		if l, _ := d.stack.ByID(c.LayerID); l != nil {
			l.SetBuffer(c.Prev)
		}
	}
}

// replay re-applies a command to the stack.
func (d *Document) replay(cmd Command) {
	switch c := cmd.(type) {
	case AddLayerCmd:
		d.stack.Insert(c.Index, c.Layer)
	case RemoveLayerCmd:
		if _, index := d.stack.ByID(c.Layer.ID()); index >= 0 {
			d.stack.Remove(index)
		}
	case MoveLayerCmd:
		d.stack.Move(c.From, c.To)
	case ScaleLayerCmd:
		if l, _ := d.stack.ByID(c.LayerID); l != nil {
			l.RestoreScale(c.NewX, c.NewY)
		}
	case VisibilityCmd:
		if l, _ := d.stack.ByID(c.LayerID); l != nil {
			l.SetVisible(c.New)
		}
	case FilterCmd:
		if l, _ := d.stack.ByID(c.LayerID); l != nil {
			l.SetBuffer(c.Next)
		}
	}
}
