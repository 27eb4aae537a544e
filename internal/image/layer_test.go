package image

import (
	"errors"
	"testing"
)

func TestLayerDefaults(t *testing.T) {
	l := NewLayer("Background")
	if l.ID() == "" {
		t.Error("ID() is empty")
	}
	if l.Name() != "Background" {
		t.Errorf("Name() = %q", l.Name())
	}
	sx, sy := l.Scale()
	if sx != 1 || sy != 1 {
		t.Errorf("Scale() = (%g,%g), want (1,1)", sx, sy)
	}
	if l.Opacity() != 1 || !l.Visible() || l.Locked() {
		t.Errorf("defaults: opacity=%g visible=%v locked=%v", l.Opacity(), l.Visible(), l.Locked())
	}
}

func TestLayerScaleClamp(t *testing.T) {
	l := NewLayer("a")
	if err := l.SetScale(0.01, -4); err != nil {
		t.Fatalf("SetScale() error: %v", err)
	}
	sx, sy := l.Scale()
	if sx != MinScale || sy != MinScale {
		t.Errorf("Scale() = (%g,%g), want clamped to %g", sx, sy, MinScale)
	}
}

func TestLayerOpacityClamp(t *testing.T) {
	l := NewLayer("a")
	if err := l.SetOpacity(1.7); err != nil {
		t.Fatal(err)
	}
	if l.Opacity() != 1 {
		t.Errorf("Opacity() = %g, want 1", l.Opacity())
	}
	if err := l.SetOpacity(-0.2); err != nil {
		t.Fatal(err)
	}
	if l.Opacity() != 0 {
		t.Errorf("Opacity() = %g, want 0", l.Opacity())
	}
}

func TestLockedLayerRefusesMutation(t *testing.T) {
	l := NewLayer("locked")
	l.SetLocked(true)

	if err := l.SetPosition(5, 5); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("SetPosition() error = %v, want ErrLayerLocked", err)
	}
	if err := l.SetScale(2, 2); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("SetScale() error = %v, want ErrLayerLocked", err)
	}
	if err := l.SetOpacity(0.5); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("SetOpacity() error = %v, want ErrLayerLocked", err)
	}

	// Visibility may still change while locked.
	l.SetVisible(false)
	if l.Visible() {
		t.Error("SetVisible() on a locked layer had no effect")
	}

	// RestoreScale bypasses the lock for history inversion.
	l.RestoreScale(3, 3)
	if sx, _ := l.Scale(); sx != 3 {
		t.Errorf("RestoreScale() sx = %g, want 3", sx)
	}
}

func TestLayerDuplicate(t *testing.T) {
	l := NewLayer("photo.png")
	buf := testBuffer(t, 4, 4)
	l.SetBuffer(buf)
	if err := l.SetPosition(10, 30); err != nil {
		t.Fatal(err)
	}
	if err := l.SetScale(2, 0.5); err != nil {
		t.Fatal(err)
	}
	l.SetLocked(true)

	dup := l.Duplicate()
	if dup.ID() == l.ID() {
		t.Error("duplicate shares the source id")
	}
	if dup.Name() != "photo.png (Copy)" {
		t.Errorf("Name() = %q", dup.Name())
	}
	pos := dup.Position()
	if pos.X != 30 || pos.Y != 50 {
		t.Errorf("Position() = %+v, want (30,50)", pos)
	}
	sx, sy := dup.Scale()
	if sx != 2 || sy != 0.5 {
		t.Errorf("Scale() = (%g,%g)", sx, sy)
	}
	if dup.Locked() {
		t.Error("duplicate starts locked")
	}
	if !dup.Buffer().Equal(buf) {
		t.Error("duplicate buffer differs from source")
	}
	if dup.Buffer() == buf {
		t.Error("duplicate shares the source buffer")
	}
}

func TestLayerPlacement(t *testing.T) {
	l := NewLayer("a")
	l.SetBuffer(testBuffer(t, 8, 6))
	if err := l.SetPosition(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := l.SetScale(2, 3); err != nil {
		t.Fatal(err)
	}

	p := l.Placement()
	if p.Width != 8 || p.Height != 6 || p.ScaleX != 2 || p.ScaleY != 3 {
		t.Errorf("Placement() = %+v", p)
	}
	b := p.SceneBounds()
	if b.Width != 16 || b.Height != 18 {
		t.Errorf("SceneBounds() = %+v, want 16x18", b)
	}
}
