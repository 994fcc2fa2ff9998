// Package surface defines the drawing-surface boundary between the
// recording front end, the replay engine and the validator on one side and
// a concrete plotting backend on the other.
//
// A Surface holds a grid of panels. Each panel exposes a fixed, named set
// of drawing and decoration operations invokable with positional and
// keyword arguments; operations whose result later calls may need return an
// opaque [Result] handle; and the whole surface can be rasterized to a
// pixel buffer.
//
// Concrete surfaces register themselves via [Register], following the
// database/sql driver pattern: import a surface package with a blank
// identifier to make it available by name.
package surface

import (
	"image"

	"github.com/figdraw/figrec/style"
)

// Geometry carries everything a surface needs to allocate its panel grid.
// It must be fully known before any call replays: later calls assume a
// panel of the recorded size already exists.
type Geometry struct {
	// FigWidth and FigHeight are the figure dimensions in inches.
	FigWidth, FigHeight float64

	// DPI is the nominal resolution the figure was designed for.
	DPI float64

	// Layout holds optional spacing parameters (left, right, top, bottom,
	// wspace, hspace) as fractions of the figure size.
	Layout map[string]float64

	// ConstrainedLayout lets the surface solve spacing itself.
	// Layout is ignored when set.
	ConstrainedLayout bool
}

// PanelLabelSpec styles the per-panel letter labels ("A", "B", ...).
type PanelLabelSpec struct {
	Loc        string
	OffsetX    float64
	OffsetY    float64
	FontSize   float64
	FontWeight string
	Color      string
}

// Result is the opaque handle a referenceable operation returns.
// The recorder maps handles to call ids so that a later call taking the
// handle as an argument is stored as a reference token instead of raw data.
type Result interface {
	// ID identifies the produced result within its surface. It is used
	// for diagnostics; cross-call linking goes through the recorder.
	ID() string
}

// Panel is one cell of the surface's grid.
//
// Panels are NOT thread-safe; a panel must only be driven from one
// goroutine.
type Panel interface {
	// Invoke dispatches a named drawing or decoration operation.
	// Referenceable operations return a non-nil Result.
	// Unknown operation names return an error; the caller decides whether
	// that aborts or is collected as a warning.
	Invoke(op string, args []any, kwargs map[string]any) (Result, error)

	// SetVisible hides or shows the panel.
	SetVisible(visible bool)
}

// Surface is a drawing surface holding a grid of panels.
type Surface interface {
	// Allocate creates the rows x cols panel grid with the given
	// geometry. It must be called exactly once, before any panel is used.
	Allocate(rows, cols int, g Geometry) error

	// Panel returns the panel at the grid position, or nil if the
	// position is out of range or Allocate has not run.
	Panel(row, col int) Panel

	// ApplyStyle applies panel-scoped style. Surfaces absorb some style
	// values into subsequent draw calls rather than patching them after
	// the fact, so this must run before the panel's calls replay.
	ApplyStyle(p Panel, st *style.Context)

	// SupTitle, SupXLabel and SupYLabel set figure-wide decorations.
	// They are applied after all panel-level calls.
	SupTitle(text string, kwargs map[string]any)
	SupXLabel(text string, kwargs map[string]any)
	SupYLabel(text string, kwargs map[string]any)

	// PanelLabel places a letter label on a panel.
	PanelLabel(p Panel, label string, spec PanelLabelSpec)

	// Rasterize renders the current surface state to a pixel buffer at
	// the given resolution.
	Rasterize(dpi float64) (image.Image, error)
}

// Handle is a minimal Result implementation for surfaces to return.
type Handle struct {
	id string
}

// NewHandle creates a Result handle with the given id.
func NewHandle(id string) *Handle { return &Handle{id: id} }

// ID implements Result.
func (h *Handle) ID() string { return h.id }
