// Package history provides a bounded undo/redo stack for reversible edits.
package history

// DefaultCapacity bounds the undo stack when no explicit capacity is given.
const DefaultCapacity = 50

// Stack holds up to a fixed number of recorded entries plus the entries that
// have been undone and are eligible for redo. Recording a new entry discards
// the redo side entirely; once the undo side is full the oldest entry is
// dropped and can never be undone again. Stack is not safe for concurrent
// use.
type Stack[T any] struct {
	capacity int
	undo     []T
	redo     []T
}

// New creates a stack bounded to the given capacity. A capacity of zero or
// less selects DefaultCapacity.
func New[T any](capacity int) *Stack[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack[T]{capacity: capacity}
}

// Record pushes a new entry onto the undo side. Any entries awaiting redo
// are discarded first, so redo is only available immediately after an undo.
// When the stack is at capacity the oldest entry is evicted.
func (s *Stack[T]) Record(entry T) {
	s.clearRedo()
	if len(s.undo) >= s.capacity {
		n := copy(s.undo, s.undo[1:])
		var zero T
		s.undo[n] = zero
		s.undo = s.undo[:n]
	}
	s.undo = append(s.undo, entry)
}

// Undo pops the most recent entry and moves it to the redo side. The second
// return is false when there is nothing to undo.
func (s *Stack[T]) Undo() (T, bool) {
	if len(s.undo) == 0 {
		var zero T
		return zero, false
	}
	entry := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, entry)
	return entry, true
}

// Redo pops the most recently undone entry and moves it back to the undo
// side. The second return is false when there is nothing to redo.
func (s *Stack[T]) Redo() (T, bool) {
	if len(s.redo) == 0 {
		var zero T
		return zero, false
	}
	entry := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, entry)
	return entry, true
}

// CanUndo reports whether Undo would return an entry.
func (s *Stack[T]) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would return an entry.
func (s *Stack[T]) CanRedo() bool { return len(s.redo) > 0 }

// Len returns the number of entries on the undo side.
func (s *Stack[T]) Len() int { return len(s.undo) }

// Cap returns the stack's capacity.
func (s *Stack[T]) Cap() int { return s.capacity }

// Clear discards all entries on both sides.
func (s *Stack[T]) Clear() {
	s.clearRedo()
	for i := range s.undo {
		var zero T
		s.undo[i] = zero
	}
	s.undo = s.undo[:0]
}

func (s *Stack[T]) clearRedo() {
	for i := range s.redo {
		var zero T
		s.redo[i] = zero
	}
	s.redo = s.redo[:0]
}
