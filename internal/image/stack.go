package image

import "errors"

// ErrIndexOutOfRange is returned for any layer index outside the stack.
var ErrIndexOutOfRange = errors.New("layer index out of range")

// Stack is an ordered collection of layers. Slice order is z-order: index 0
// is the bottom layer, and every layer's z value equals its index. The stack
// tracks an active layer; -1 means none. Stack is not safe for concurrent
// use; the controlling thread owns it.
type Stack struct {
	layers []*Layer
	active int
}

// NewStack creates an empty stack with no active layer.
func NewStack() *Stack {
	return &Stack{active: -1}
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layer returns the layer at the given index, or nil if out of range.
func (s *Stack) Layer(index int) *Layer {
	if index < 0 || index >= len(s.layers) {
		return nil
	}
	return s.layers[index]
}

// Layers returns a copy of the ordered layer slice.
func (s *Stack) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// ByID finds a layer by id, returning the layer and its index, or (nil, -1).
func (s *Stack) ByID(id string) (*Layer, int) {
	for i, l := range s.layers {
		if l.id == id {
			return l, i
		}
	}
	return nil, -1
}

// ActiveIndex returns the active layer index, or -1 when the stack is empty.
func (s *Stack) ActiveIndex() int { return s.active }

// Active returns the active layer, or nil when there is none.
func (s *Stack) Active() *Layer {
	if s.active < 0 || s.active >= len(s.layers) {
		return nil
	}
	return s.layers[s.active]
}

// SetActive selects the active layer by index.
func (s *Stack) SetActive(index int) error {
	if index < 0 || index >= len(s.layers) {
		return ErrIndexOutOfRange
	}
	s.active = index
	return nil
}

// Add appends a layer on top of the stack and returns its index. The first
// layer added becomes active.
func (s *Stack) Add(l *Layer) int {
	s.layers = append(s.layers, l)
	if len(s.layers) == 1 {
		s.active = 0
	}
	s.resequence()
	return len(s.layers) - 1
}

// Insert places a layer at the given index, shifting later layers up.
// Index may equal Len to append. Used when history resurrects a removed
// layer at its original position.
func (s *Stack) Insert(index int, l *Layer) error {
	if index < 0 || index > len(s.layers) {
		return ErrIndexOutOfRange
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[index+1:], s.layers[index:])
	s.layers[index] = l
	if len(s.layers) == 1 {
		s.active = 0
	} else if index <= s.active {
		s.active++
	}
	s.resequence()
	return nil
}

// Remove detaches and returns the layer at the given index. Removing the
// active layer re-activates index 0, or clears the selection when the stack
// becomes empty.
func (s *Stack) Remove(index int) (*Layer, error) {
	if index < 0 || index >= len(s.layers) {
		return nil, ErrIndexOutOfRange
	}
	l := s.layers[index]
	s.layers = append(s.layers[:index], s.layers[index+1:]...)

	switch {
	case len(s.layers) == 0:
		s.active = -1
	case index == s.active:
		s.active = 0
	case index < s.active:
		s.active--
	}
	s.resequence()
	return l, nil
}

// Move re-sequences a layer from one index to another. The active selection
// follows the layer it pointed at.
func (s *Stack) Move(from, to int) error {
	if from < 0 || from >= len(s.layers) || to < 0 || to >= len(s.layers) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	activeLayer := s.Active()

	l := s.layers[from]
	s.layers = append(s.layers[:from], s.layers[from+1:]...)
	s.layers = append(s.layers, nil)
	copy(s.layers[to+1:], s.layers[to:])
	s.layers[to] = l

	if activeLayer != nil {
		_, s.active = s.ByID(activeLayer.id)
	}
	s.resequence()
	return nil
}

// Replace swaps in an entirely new layer sequence, activating index 0 when
// non-empty. Load uses this so collaborators never observe a partially
// replaced stack.
func (s *Stack) Replace(layers []*Layer) {
	s.layers = layers
	if len(layers) > 0 {
		s.active = 0
	} else {
		s.active = -1
	}
	s.resequence()
}

// resequence restores the z = index invariant after structural mutation.
func (s *Stack) resequence() {
	for i, l := range s.layers {
		l.z = i
	}
}
