package history

import "testing"

func TestDefaultCapacity(t *testing.T) {
	if got := New[int](0).Cap(); got != DefaultCapacity {
		t.Errorf("New(0).Cap() = %d, want %d", got, DefaultCapacity)
	}
	if got := New[int](-3).Cap(); got != DefaultCapacity {
		t.Errorf("New(-3).Cap() = %d, want %d", got, DefaultCapacity)
	}
	if got := New[int](7).Cap(); got != 7 {
		t.Errorf("New(7).Cap() = %d, want 7", got)
	}
}

func TestRecordEvictsOldest(t *testing.T) {
	s := New[int](3)
	for i := 1; i <= 4; i++ {
		s.Record(i)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	// Undoing everything should surface 4, 3, 2; entry 1 was evicted.
	for _, want := range []int{4, 3, 2} {
		got, ok := s.Undo()
		if !ok || got != want {
			t.Errorf("Undo() = (%d,%v), want (%d,true)", got, ok, want)
		}
	}
	if _, ok := s.Undo(); ok {
		t.Error("Undo() succeeded past the evicted entry")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := New[string](10)
	s.Record("a")
	s.Record("b")

	got, ok := s.Undo()
	if !ok || got != "b" {
		t.Fatalf("Undo() = (%q,%v)", got, ok)
	}
	if !s.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}

	got, ok = s.Redo()
	if !ok || got != "b" {
		t.Fatalf("Redo() = (%q,%v)", got, ok)
	}
	if s.CanRedo() {
		t.Error("CanRedo() = true after redo drained")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestRecordDiscardsRedo(t *testing.T) {
	s := New[int](10)
	s.Record(1)
	s.Record(2)
	if _, ok := s.Undo(); !ok {
		t.Fatal("Undo() failed")
	}

	s.Record(3)
	if s.CanRedo() {
		t.Error("CanRedo() = true after recording over an undone entry")
	}
	if _, ok := s.Redo(); ok {
		t.Error("Redo() succeeded after a fresh record")
	}

	got, ok := s.Undo()
	if !ok || got != 3 {
		t.Errorf("Undo() = (%d,%v), want (3,true)", got, ok)
	}
}

func TestEmptyStackNoOps(t *testing.T) {
	s := New[int](5)
	if _, ok := s.Undo(); ok {
		t.Error("Undo() on empty stack succeeded")
	}
	if _, ok := s.Redo(); ok {
		t.Error("Redo() on empty stack succeeded")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("empty stack reports available entries")
	}
}

func TestClear(t *testing.T) {
	s := New[int](5)
	s.Record(1)
	s.Record(2)
	s.Undo()

	s.Clear()
	if s.Len() != 0 || s.CanUndo() || s.CanRedo() {
		t.Errorf("after Clear: Len=%d CanUndo=%v CanRedo=%v", s.Len(), s.CanUndo(), s.CanRedo())
	}
}
