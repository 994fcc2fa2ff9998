package surface

import (
	"errors"
	"image"
	"testing"

	"github.com/figdraw/figrec/style"
)

// stubSurface is a minimal Surface for registry tests.
type stubSurface struct{ name string }

func (s *stubSurface) Allocate(rows, cols int, g Geometry) error      { return nil }
func (s *stubSurface) Panel(row, col int) Panel                       { return nil }
func (s *stubSurface) ApplyStyle(p Panel, st *style.Context)          {}
func (s *stubSurface) SupTitle(text string, kwargs map[string]any)    {}
func (s *stubSurface) SupXLabel(text string, kwargs map[string]any)   {}
func (s *stubSurface) SupYLabel(text string, kwargs map[string]any)   {}
func (s *stubSurface) PanelLabel(p Panel, label string, sp PanelLabelSpec) {}
func (s *stubSurface) Rasterize(dpi float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func stubFactory(name string) Factory {
	return func() (Surface, error) { return &stubSurface{name: name}, nil }
}

func TestRegistryRegisterAndNewByName(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", 10, stubFactory("stub"), nil)

	s, err := r.NewByName("stub")
	if err != nil {
		t.Fatalf("NewByName: %v", err)
	}
	if s == nil {
		t.Fatal("NewByName returned nil surface")
	}
}

func TestRegistryNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewByName("missing")
	var nf *BackendNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want BackendNotFoundError", err)
	}
	if nf.Name != "missing" {
		t.Errorf("Name = %q, want %q", nf.Name, "missing")
	}
}

func TestRegistryUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register("off", 10, stubFactory("off"), func() bool { return false })

	_, err := r.NewByName("off")
	var ua *BackendUnavailableError
	if !errors.As(err, &ua) {
		t.Fatalf("err = %v, want BackendUnavailableError", err)
	}

	if _, err := r.New(); !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("New() err = %v, want ErrNoBackendAvailable", err)
	}
}

func TestRegistryPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 1, stubFactory("low"), nil)
	r.Register("high", 100, stubFactory("high"), nil)

	names := r.List()
	if len(names) != 2 || names[0] != "high" || names[1] != "low" {
		t.Errorf("List() = %v, want [high low]", names)
	}

	s, err := r.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ss := s.(*stubSurface); ss.name != "high" {
		t.Errorf("New selected %q, want %q", ss.name, "high")
	}
}

func TestRegistryNewSkipsUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", 100, stubFactory("broken"), func() bool { return false })
	r.Register("ok", 1, stubFactory("ok"), nil)

	s, err := r.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ss := s.(*stubSurface); ss.name != "ok" {
		t.Errorf("New selected %q, want %q", ss.name, "ok")
	}
}

func TestRegistryDefaultName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.DefaultName(); !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("empty DefaultName err = %v, want ErrNoBackendAvailable", err)
	}

	r.Register("broken", 100, stubFactory("broken"), func() bool { return false })
	r.Register("ok", 1, stubFactory("ok"), nil)
	name, err := r.DefaultName()
	if err != nil {
		t.Fatalf("DefaultName: %v", err)
	}
	if name != "ok" {
		t.Errorf("DefaultName = %q, want %q", name, "ok")
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("tmp", 10, stubFactory("tmp"), nil)
	r.Unregister("tmp")
	if _, err := r.NewByName("tmp"); err == nil {
		t.Error("NewByName after Unregister should fail")
	}
}

func TestHandleID(t *testing.T) {
	h := NewHandle("contour_000")
	if h.ID() != "contour_000" {
		t.Errorf("ID() = %q, want %q", h.ID(), "contour_000")
	}
}
