package image

import (
	"errors"
	"testing"
)

func checkZOrder(t *testing.T, s *Stack) {
	t.Helper()
	for i, l := range s.Layers() {
		if l.Z() != i {
			t.Errorf("layer %q at index %d has z = %d", l.Name(), i, l.Z())
		}
	}
}

func TestStackAddActivatesFirst(t *testing.T) {
	s := NewStack()
	if s.ActiveIndex() != -1 {
		t.Fatalf("empty stack ActiveIndex() = %d, want -1", s.ActiveIndex())
	}

	a := NewLayer("a")
	if idx := s.Add(a); idx != 0 {
		t.Errorf("Add() = %d, want 0", idx)
	}
	if s.ActiveIndex() != 0 {
		t.Errorf("ActiveIndex() = %d, want 0 after first add", s.ActiveIndex())
	}

	b := NewLayer("b")
	if idx := s.Add(b); idx != 1 {
		t.Errorf("Add() = %d, want 1", idx)
	}
	// Later adds do not steal the selection.
	if s.ActiveIndex() != 0 {
		t.Errorf("ActiveIndex() = %d, want 0", s.ActiveIndex())
	}
	checkZOrder(t, s)
}

func TestStackRemove(t *testing.T) {
	s := NewStack()
	a, b, c := NewLayer("a"), NewLayer("b"), NewLayer("c")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	if _, err := s.Remove(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Remove(3) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := s.Remove(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Remove(-1) error = %v, want ErrIndexOutOfRange", err)
	}

	// Removing a layer below the active one keeps the same layer active.
	if err := s.SetActive(2); err != nil {
		t.Fatal(err)
	}
	got, err := s.Remove(0)
	if err != nil {
		t.Fatalf("Remove(0) error: %v", err)
	}
	if got != a {
		t.Errorf("Remove(0) = %q, want a", got.Name())
	}
	if s.Active() != c {
		t.Errorf("Active() = %v, want c", s.Active())
	}
	checkZOrder(t, s)

	// Removing the active layer falls back to index 0.
	if _, err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	if s.ActiveIndex() != 0 || s.Active() != b {
		t.Errorf("active = %d (%v), want 0 (b)", s.ActiveIndex(), s.Active())
	}

	// Removing the last layer clears the selection.
	if _, err := s.Remove(0); err != nil {
		t.Fatal(err)
	}
	if s.ActiveIndex() != -1 || s.Active() != nil {
		t.Errorf("empty stack active = %d", s.ActiveIndex())
	}
}

func TestStackMove(t *testing.T) {
	s := NewStack()
	a, b, c := NewLayer("a"), NewLayer("b"), NewLayer("c")
	s.Add(a)
	s.Add(b)
	s.Add(c)
	if err := s.SetActive(1); err != nil {
		t.Fatal(err)
	}

	if err := s.Move(0, 2); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	want := []*Layer{b, c, a}
	for i, l := range s.Layers() {
		if l != want[i] {
			t.Errorf("layer[%d] = %q, want %q", i, l.Name(), want[i].Name())
		}
	}
	// The selection follows the layer it pointed at.
	if s.Active() != b {
		t.Errorf("Active() = %q, want b", s.Active().Name())
	}
	checkZOrder(t, s)

	if err := s.Move(0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Move(0,3) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestStackInsert(t *testing.T) {
	s := NewStack()
	a, c := NewLayer("a"), NewLayer("c")
	s.Add(a)
	s.Add(c)
	if err := s.SetActive(1); err != nil {
		t.Fatal(err)
	}

	b := NewLayer("b")
	if err := s.Insert(1, b); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if s.Layer(1) != b {
		t.Errorf("Layer(1) = %q, want b", s.Layer(1).Name())
	}
	// Active selection shifted with the insertion.
	if s.Active() != c {
		t.Errorf("Active() = %q, want c", s.Active().Name())
	}
	checkZOrder(t, s)

	if err := s.Insert(5, NewLayer("x")); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Insert(5) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestStackReplace(t *testing.T) {
	s := NewStack()
	s.Add(NewLayer("old"))

	fresh := []*Layer{NewLayer("x"), NewLayer("y")}
	s.Replace(fresh)
	if s.Len() != 2 || s.ActiveIndex() != 0 {
		t.Errorf("after Replace: len=%d active=%d", s.Len(), s.ActiveIndex())
	}
	checkZOrder(t, s)

	s.Replace(nil)
	if s.Len() != 0 || s.ActiveIndex() != -1 {
		t.Errorf("after empty Replace: len=%d active=%d", s.Len(), s.ActiveIndex())
	}
}

func TestStackByID(t *testing.T) {
	s := NewStack()
	a := NewLayer("a")
	s.Add(a)

	got, idx := s.ByID(a.ID())
	if got != a || idx != 0 {
		t.Errorf("ByID() = (%v,%d)", got, idx)
	}
	if got, idx := s.ByID("nope"); got != nil || idx != -1 {
		t.Errorf("ByID(unknown) = (%v,%d), want (nil,-1)", got, idx)
	}
}
