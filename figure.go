package figrec

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/figdraw/figrec/recipe"
	"github.com/figdraw/figrec/record"
	"github.com/figdraw/figrec/replay"
	"github.com/figdraw/figrec/style"
	"github.com/figdraw/figrec/surface"
	"github.com/figdraw/figrec/validate"
)

// Kw is shorthand for a keyword argument map.
type Kw = map[string]any

/// Figure is a recorded figure under construction: a grid of panels whose
// drawing calls accumulate in a recipe record. When a surface backend is
// registered the calls also draw on a live surface as they are made, so
// recording never changes what the user sees.
type Figure struct {
	rec        *record.Recorder
	surf       surface.Surface
	rows, cols int
	axes       []*Axes
	style      *style.Context
}

// Options configure a new figure.
type Options struct {
	// Width and Height are the figure size in inches.
	Width, Height float64

	// DPI is the raster resolution the figure is designed for.
	DPI float64

	// Style is the figure's style context. Nil uses the process default.
	Style *style.Context

	// Layout holds explicit spacing fractions (left, right, top, bottom,
	// wspace, hspace).
	Layout map[string]float64

	// ConstrainedLayout lets the backend solve spacing itself.
	ConstrainedLayout bool
}

// Option mutates Options.
type Option func(*Options)

// WithSize sets the figure size in inches.
func WithSize(width, height float64) Option {
	return func(o *Options) { o.Width, o.Height = width, height }
}

// WithDPI sets the raster resolution.
func WithDPI(dpi float64) Option {
	return func(o *Options) { o.DPI = dpi }
}

// WithStyle sets the figure's style context.
func WithStyle(st *style.Context) Option {
	return func(o *Options) { o.Style = st }
}

// WithLayout sets explicit spacing fractions.
func WithLayout(layout map[string]float64) Option {
	return func(o *Options) { o.Layout = layout }
}

// WithConstrainedLayout lets the backend solve panel spacing.
func WithConstrainedLayout() Option {
	return func(o *Options) { o.ConstrainedLayout = true }
}

// Subplots creates a figure with a rows x cols panel grid.
func Subplots(rows, cols int, opts ...Option) (*Figure, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("figrec: invalid grid %dx%d", rows, cols)
	}
	o := Options{Width: 6.4, Height: 4.8, DPI: 100}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Figure{
		rec:  record.NewRecorder(o.Width, o.Height, o.DPI),
		rows: rows,
		cols: cols,
	}
	rec := f.rec.Figure()
	rec.Layout = o.Layout
	rec.ConstrainedLayout = o.ConstrainedLayout

	st := o.Style
	if st == nil {
		st = style.Default()
	}
	f.style = st
	rec.Style = st.Map()

	// Drawing happens live when a backend is registered. Recording alone
	// still works without one.
	if s, err := surface.New(); err == nil {
		g := surface.Geometry{
			FigWidth:          o.Width,
			FigHeight:         o.Height,
			DPI:               o.DPI,
			Layout:            o.Layout,
			ConstrainedLayout: o.ConstrainedLayout,
		}
		if err := s.Allocate(rows, cols, g); err == nil {
			f.surf = s
		}
	}

	f.axes = make([]*Axes, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := record.Position{Row: r, Col: c}
			f.axes[r*cols+c] = &Axes{fig: f, pos: pos}
			// Materialize the panel so the grid shape is recorded even
			// for panels that never receive a call.
			rec.AxesAt(pos)
			if f.surf != nil {
				f.surf.ApplyStyle(f.surf.Panel(r, c), st)
			}
		}
	}
	return f, nil
}

// Axes returns the panel at the grid position, or nil if out of range.
func (f *Figure) Axes(row, col int) *Axes {
	if row < 0 || col < 0 || row >= f.rows || col >= f.cols {
		return nil
	}
	return f.axes[row*f.cols+col]
}

// Grid returns the figure's panel grid shape.
func (f *Figure) Grid() (rows, cols int) { return f.rows, f.cols }

// Style returns the figure's style context.
func (f *Figure) Style() *style.Context { return f.style }

// Record exposes the underlying figure record.
func (f *Figure) Record() *record.FigureRecord { return f.rec.Figure() }

// SupTitle sets the figure-wide title.
func (f *Figure) SupTitle(text string, kw Kw) {
	if f.surf != nil {
		f.surf.SupTitle(text, kw)
	}
	f.rec.Figure().SupTitle = &record.TextRecord{Text: text, Kwargs: kw}
}

// SupXLabel sets the figure-wide x axis label.
func (f *Figure) SupXLabel(text string, kw Kw) {
	if f.surf != nil {
		f.surf.SupXLabel(text, kw)
	}
	f.rec.Figure().SupXLabel = &record.TextRecord{Text: text, Kwargs: kw}
}

// SupYLabel sets the figure-wide y axis label.
func (f *Figure) SupYLabel(text string, kw Kw) {
	if f.surf != nil {
		f.surf.SupYLabel(text, kw)
	}
	f.rec.Figure().SupYLabel = &record.TextRecord{Text: text, Kwargs: kw}
}

// PanelLabels letters the panels in row-major order. Pass nil labels to
// generate a, b, c, ...
func (f *Figure) PanelLabels(labels []string, spec record.PanelLabels) {
	spec.Labels = labels
	f.rec.Figure().PanelLabels = &spec
}

// SetCaption attaches a figure-level caption to the record.
func (f *Figure) SetCaption(caption string) {
	f.rec.Figure().Caption = caption
}

// SetMetadata stores an entry in the record's metadata map.
func (f *Figure) SetMetadata(key string, value any) {
	rec := f.rec.Figure()
	if rec.Metadata == nil {
		rec.Metadata = make(map[string]any)
	}
	rec.Metadata[key] = value
}

// SaveRecipe writes the figure's recipe document.
func (f *Figure) SaveRecipe(path string, opts ...recipe.Option) error {
	return recipe.Save(f.rec.Figure(), path, opts...)
}

// Reproduce replays the recorded figure onto a surface backend.
func (f *Figure) Reproduce(opts ...replay.Option) (*replay.Reproduction, error) {
	return replay.Reproduce(f.rec.Figure(), opts...)
}

// Render reproduces and rasterizes the figure at its recorded dpi.
func (f *Figure) Render(opts ...replay.Option) (image.Image, error) {
	rep, err := f.Reproduce(opts...)
	if err != nil {
		return nil, err
	}
	return rep.Image(0)
}

// SavePNG renders the figure, writes the image to path and saves the
// recipe document next to it.
func (f *Figure) SavePNG(path string, opts ...replay.Option) error {
	img, err := f.Render(opts...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("figrec: %w", err)
	}
	var o replay.Options
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.Backend != "":
		f.rec.Figure().Backend = o.Backend
	case o.Surface == nil:
		if name, err := surface.DefaultName(); err == nil {
			f.rec.Figure().Backend = name
		}
	}
	if err := f.SaveRecipe(path); err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".png") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("figrec: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("figrec: encode %s: %w", path, err)
	}
	return nil
}

// LoadRecipe reads a recipe document, resolving sidecar data files and
// merging any sibling overrides file.
func LoadRecipe(path string) (*record.FigureRecord, error) {
	return recipe.Load(path)
}

// Reproduce replays a loaded figure record onto a surface backend.
func Reproduce(fig *record.FigureRecord, opts ...replay.Option) (*replay.Reproduction, error) {
	return replay.Reproduce(fig, opts...)
}

// Validate reproduces the recipe at recipePath and compares it against
// the reference image at imagePath.
func Validate(recipePath, imagePath string, opts ...validate.Option) (validate.Result, error) {
	return validate.File(recipePath, imagePath, opts...)
}
