// Package replay reproduces a recorded figure on a drawing surface. It
// walks a figure record panel by panel, resolves each call's arguments and
// dispatches them to the backend. A failing call never aborts the replay;
// it is collected as a warning and the remaining calls continue, so one
// bad trace still yields a figure.
package replay

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/figdraw/figrec/internal/logging"
	"github.com/figdraw/figrec/record"
	"github.com/figdraw/figrec/style"
	"github.com/figdraw/figrec/surface"
)

// ErrUnresolvedRef marks a reference token whose producing call has not
// replayed or produced no result.
var ErrUnresolvedRef = errors.New("replay: unresolved call reference")

// ErrNoPanel marks a recorded panel position the surface could not supply.
var ErrNoPanel = errors.New("replay: no panel at recorded position")

// ErrNoGeometry is returned when the record carries no panel structure
// to rebuild a surface from. It aborts replay before any call runs.
var ErrNoGeometry = errors.New("replay: record has no panel geometry")

// Warning describes one call that failed to replay.
type Warning struct {
	CallID string
	Op     string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %v", w.CallID, w.Op, w.Err)
}

// Options configure a reproduction.
type Options struct {
	// Surface is an explicit, unallocated surface to draw on. When nil,
	// Backend or the registry's best available backend is used.
	Surface surface.Surface

	// Backend selects a registered surface backend by name.
	Backend string

	// Style overrides the record's style map entirely.
	Style *style.Context

	// Only restricts replay to the records with these ids, plot calls
	// and decorations alike.
	Only []string

	// SkipDecorations leaves all decorations out, reproducing the bare
	// data traces.
	SkipDecorations bool
}

// Option mutates Options.
type Option func(*Options)

// WithSurface replays onto the given unallocated surface.
func WithSurface(s surface.Surface) Option {
	return func(o *Options) { o.Surface = s }
}

// WithBackend selects a registered surface backend by name.
func WithBackend(name string) Option {
	return func(o *Options) { o.Backend = name }
}

// WithStyle replaces the record's style context for this reproduction.
func WithStyle(st *style.Context) Option {
	return func(o *Options) { o.Style = st }
}

// WithOnly replays only the records with the given ids.
func WithOnly(ids ...string) Option {
	return func(o *Options) { o.Only = append(o.Only, ids...) }
}

// WithoutDecorations skips every decoration call.
func WithoutDecorations() Option {
	return func(o *Options) { o.SkipDecorations = true }
}

// Reproduction is the outcome of a replay: the surface carrying the
// redrawn figure plus any per-call warnings.
type Reproduction struct {
	Surface  surface.Surface
	Warnings []Warning

	fig *record.FigureRecord
}

// Image rasterizes the reproduced figure. A dpi of 0 uses the recorded
// dpi.
func (r *Reproduction) Image(dpi float64) (image.Image, error) {
	if dpi <= 0 {
		dpi = r.fig.DPI
	}
	return r.Surface.Rasterize(dpi)
}

// Reproduce replays the figure record onto a surface.
func Reproduce(fig *record.FigureRecord, opts ...Option) (*Reproduction, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if len(fig.Axes) == 0 {
		return nil, ErrNoGeometry
	}
	s, err := pickSurface(&o)
	if err != nil {
		return nil, err
	}

	rows, cols := fig.GridShape()
	geom := surface.Geometry{
		FigWidth:          fig.FigSize[0],
		FigHeight:         fig.FigSize[1],
		DPI:               fig.DPI,
		Layout:            fig.Layout,
		ConstrainedLayout: fig.ConstrainedLayout,
	}
	if geom.FigWidth <= 0 || geom.FigHeight <= 0 {
		geom.FigWidth, geom.FigHeight = 6.4, 4.8
	}
	if err := s.Allocate(rows, cols, geom); err != nil {
		return nil, err
	}

	st := o.Style
	if st == nil {
		st = style.Default().Clone()
		st.Merge(fig.Style)
	}

	rep := &Reproduction{Surface: s, fig: fig}
	cache := make(map[string]surface.Result)
	log := logging.Logger()

	for _, ax := range fig.SortedAxes() {
		p := s.Panel(ax.Row, ax.Col)
		if p == nil {
			rep.warn(record.Position{Row: ax.Row, Col: ax.Col}.Key(), "", ErrNoPanel)
			continue
		}
		if !ax.IsVisible() {
			p.SetVisible(false)
			continue
		}
		s.ApplyStyle(p, st)

		for _, call := range ax.Calls {
			if len(o.Only) > 0 && !contains(o.Only, call.ID) {
				continue
			}
			rep.replayCall(p, call, cache, log)
		}
		if o.SkipDecorations {
			continue
		}
		for _, call := range ax.Decorations {
			if len(o.Only) > 0 && !contains(o.Only, call.ID) {
				continue
			}
			rep.replayCall(p, call, cache, log)
		}
	}

	applyFigureText(s, fig)
	applyPanelLabels(s, fig)
	return rep, nil
}

func (r *Reproduction) replayCall(p surface.Panel, call *record.CallRecord, cache map[string]surface.Result, log *slog.Logger) {
	args, err := resolveArgs(call, cache)
	if err != nil {
		r.Warnings = append(r.Warnings, Warning{CallID: call.ID, Op: call.Function, Err: err})
		log.Warn("call skipped", "call", call.ID, "op", call.Function, "err", err)
		return
	}
	res, err := p.Invoke(call.Function, args, call.Kwargs)
	if err != nil {
		r.Warnings = append(r.Warnings, Warning{CallID: call.ID, Op: call.Function, Err: err})
		log.Warn("call failed", "call", call.ID, "op", call.Function, "err", err)
		return
	}
	if res != nil {
		cache[call.ID] = res
	}
}

func (r *Reproduction) warn(id, op string, err error) {
	r.Warnings = append(r.Warnings, Warning{CallID: id, Op: op, Err: err})
}

// resolveArgs turns recorded arguments back into invocation values:
// reference tokens become cached results, grouped samples become slices of
// groups, arrays become codec arrays, scalars pass through.
func resolveArgs(call *record.CallRecord, cache map[string]surface.Result) ([]any, error) {
	spec, _ := record.Op(call.Function)
	args := make([]any, 0, len(call.Args))
	for i := range call.Args {
		a := &call.Args[i]
		if ref, ok := record.AsRef(a.Data); ok {
			res, found := cache[ref.ID]
			if !found {
				return nil, fmt.Errorf("%w: %s", ErrUnresolvedRef, ref.ID)
			}
			args = append(args, res)
			continue
		}
		if spec.Special {
			if groups, ok := a.Groups(); ok {
				args = append(args, groups)
				continue
			}
		}
		if arr := a.Resolve(); arr != nil {
			args = append(args, arr)
			continue
		}
		args = append(args, a.Data)
	}
	return args, nil
}

func pickSurface(o *Options) (surface.Surface, error) {
	if o.Surface != nil {
		return o.Surface, nil
	}
	if o.Backend != "" {
		return surface.NewByName(o.Backend)
	}
	return surface.New()
}

func applyFigureText(s surface.Surface, fig *record.FigureRecord) {
	if t := fig.SupTitle; t != nil {
		s.SupTitle(t.Text, t.Kwargs)
	}
	if t := fig.SupXLabel; t != nil {
		s.SupXLabel(t.Text, t.Kwargs)
	}
	if t := fig.SupYLabel; t != nil {
		s.SupYLabel(t.Text, t.Kwargs)
	}
}

// applyPanelLabels letters the panels in row-major order. Explicit labels
// win; otherwise a, b, c, ... are generated.
func applyPanelLabels(s surface.Surface, fig *record.FigureRecord) {
	pl := fig.PanelLabels
	if pl == nil {
		return
	}
	spec := surface.PanelLabelSpec{
		Loc:        pl.Loc,
		OffsetX:    pl.Offset[0],
		OffsetY:    pl.Offset[1],
		FontSize:   pl.FontSize,
		FontWeight: pl.FontWeight,
		Color:      pl.Color,
	}
	for i, ax := range fig.SortedAxes() {
		p := s.Panel(ax.Row, ax.Col)
		if p == nil || !ax.IsVisible() {
			continue
		}
		label := ""
		if i < len(pl.Labels) {
			label = pl.Labels[i]
		} else {
			label = string(rune('a' + i%26))
		}
		s.PanelLabel(p, label, spec)
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
