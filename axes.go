package figrec

import (
	"github.com/figdraw/figrec/record"
	"github.com/figdraw/figrec/surface"
)

// Axes is a single panel of a figure. Every drawing method draws on the
// live surface, if one is attached, and then appends to the record.
type Axes struct {
	fig *Figure
	pos record.Position
}

// Position returns the panel's grid position.
func (a *Axes) Position() record.Position { return a.pos }

// Call performs and records an arbitrary operation. Drawing code
// normally uses the typed methods; Call is the escape hatch for
// operations without one.
func (a *Axes) Call(op string, args []any, kw Kw) (*record.CallRecord, error) {
	call, _, err := a.call(op, args, kw)
	return call, err
}

// call invokes the live panel first, then appends to the record. The
// draw must succeed before anything is recorded so that a recorded
// recipe never contains a call the surface rejected.
func (a *Axes) call(op string, args []any, kw Kw) (*record.CallRecord, surface.Result, error) {
	var res surface.Result
	if p := a.livePanel(); p != nil {
		var err error
		res, err = p.Invoke(op, args, kw)
		if err != nil {
			return nil, nil, err
		}
	}
	call, err := a.fig.rec.RecordCall(a.pos, op, args, kw)
	if err != nil {
		return nil, nil, err
	}
	if spec, ok := record.Op(op); ok && spec.Referenceable {
		if res == nil {
			res = surface.NewHandle(call.ID)
		}
		a.fig.rec.RegisterResult(res, call.ID)
	}
	return call, res, nil
}

func (a *Axes) record(op string, args []any, kw Kw) error {
	_, _, err := a.call(op, args, kw)
	return err
}

func (a *Axes) livePanel() surface.Panel {
	if a.fig.surf == nil {
		return nil
	}
	return a.fig.surf.Panel(a.pos.Row, a.pos.Col)
}

// SetVisible hides or shows the panel during reproduction.
func (a *Axes) SetVisible(visible bool) {
	if p := a.livePanel(); p != nil {
		p.SetVisible(visible)
	}
	rec := a.fig.rec.Figure().AxesAt(a.pos)
	rec.Visible = &visible
}

// SetCaption attaches a caption to the panel record.
func (a *Axes) SetCaption(caption string) {
	a.fig.rec.Figure().AxesAt(a.pos).Caption = caption
}

// Plot records a line plot. A "fmt" entry in kw ("ro--" and friends) is
// lifted into the format argument.
func (a *Axes) Plot(x, y []float64, kw Kw) error {
	args := []any{x, y}
	if kw != nil {
		if f, ok := kw["fmt"].(string); ok {
			args = append(args, f)
			kw = cloneKw(kw)
			delete(kw, "fmt")
		}
	}
	return a.record("plot", args, kw)
}

// Scatter records a scatter plot. Marker sizes and colors go through kw
// ("s", "c") or the typed variants below.
func (a *Axes) Scatter(x, y []float64, kw Kw) error {
	return a.record("scatter", []any{x, y}, kw)
}

// ScatterSized records a scatter plot with per-point marker areas.
func (a *Axes) ScatterSized(x, y, s []float64, kw Kw) error {
	return a.record("scatter", []any{x, y, s}, kw)
}

// Bar records a vertical bar chart.
func (a *Axes) Bar(x, height []float64, kw Kw) error {
	return a.record("bar", []any{x, height}, kw)
}

// BarH records a horizontal bar chart.
func (a *Axes) BarH(y, width []float64, kw Kw) error {
	return a.record("barh", []any{y, width}, kw)
}

// Hist records a histogram of x.
func (a *Axes) Hist(x []float64, kw Kw) error {
	return a.record("hist", []any{x}, kw)
}

// Step records a step line.
func (a *Axes) Step(x, y []float64, kw Kw) error {
	return a.record("step", []any{x, y}, kw)
}

// Stem records a stem plot.
func (a *Axes) Stem(x, y []float64, kw Kw) error {
	return a.record("stem", []any{x, y}, kw)
}

// ErrorBar records a line with error bars. yerr and xerr may be nil.
func (a *Axes) ErrorBar(x, y, yerr, xerr []float64, kw Kw) error {
	args := []any{x, y}
	if xerr != nil {
		var yv any
		if yerr != nil {
			yv = yerr
		}
		args = append(args, yv, xerr)
	} else if yerr != nil {
		args = append(args, yerr)
	}
	return a.record("errorbar", args, kw)
}

// FillBetween records a filled region between y1 and y2.
func (a *Axes) FillBetween(x, y1, y2 []float64, kw Kw) error {
	return a.record("fill_between", []any{x, y1, y2}, kw)
}

// Imshow records an image display of the matrix.
func (a *Axes) Imshow(m [][]float64, kw Kw) error {
	return a.record("imshow", []any{m}, kw)
}

// ContourSet is the handle returned by contouring calls. It can be
// passed back to CLabel, which records a reference to the originating
// call rather than the data itself.
type ContourSet struct {
	surface.Result
}

// Contour records contour lines over Z and returns a referenceable
// handle.
func (a *Axes) Contour(z [][]float64, kw Kw) (*ContourSet, error) {
	return a.contour("contour", z, kw)
}

// Contourf records filled contours over Z and returns a referenceable
// handle.
func (a *Axes) Contourf(z [][]float64, kw Kw) (*ContourSet, error) {
	return a.contour("contourf", z, kw)
}

func (a *Axes) contour(op string, z [][]float64, kw Kw) (*ContourSet, error) {
	_, res, err := a.call(op, []any{z}, kw)
	if err != nil {
		return nil, err
	}
	return &ContourSet{Result: res}, nil
}

// CLabel records contour labeling for a previously recorded contour set.
func (a *Axes) CLabel(cs *ContourSet, kw Kw) error {
	return a.record("clabel", []any{cs.Result}, kw)
}

// Boxplot records a box-and-whisker plot of the groups.
func (a *Axes) Boxplot(groups [][]float64, kw Kw) error {
	return a.record("boxplot", []any{groups}, kw)
}

// Violinplot records a violin plot of the groups.
func (a *Axes) Violinplot(groups [][]float64, kw Kw) error {
	return a.record("violinplot", []any{groups}, kw)
}

// Swarmplot records a jittered strip plot of the groups.
func (a *Axes) Swarmplot(groups [][]float64, kw Kw) error {
	return a.record("swarmplot", []any{groups}, kw)
}

// SetXLabel records the x axis label.
func (a *Axes) SetXLabel(text string, kw Kw) error {
	return a.record("set_xlabel", []any{text}, kw)
}

// SetYLabel records the y axis label.
func (a *Axes) SetYLabel(text string, kw Kw) error {
	return a.record("set_ylabel", []any{text}, kw)
}

// SetTitle records the panel title.
func (a *Axes) SetTitle(text string, kw Kw) error {
	return a.record("set_title", []any{text}, kw)
}

// SetXLim records the x axis limits.
func (a *Axes) SetXLim(lo, hi float64) error {
	return a.record("set_xlim", []any{lo, hi}, nil)
}

// SetYLim records the y axis limits.
func (a *Axes) SetYLim(lo, hi float64) error {
	return a.record("set_ylim", []any{lo, hi}, nil)
}

// SetXScale records the x axis scale ("linear" or "log").
func (a *Axes) SetXScale(scale string) error {
	return a.record("set_xscale", []any{scale}, nil)
}

// SetYScale records the y axis scale ("linear" or "log").
func (a *Axes) SetYScale(scale string) error {
	return a.record("set_yscale", []any{scale}, nil)
}

// Legend records a legend for the panel's labeled series.
func (a *Axes) Legend(kw Kw) error {
	return a.record("legend", nil, kw)
}

// Grid records grid-line visibility.
func (a *Axes) Grid(visible bool, kw Kw) error {
	return a.record("grid", []any{visible}, kw)
}

// AxHLine records a horizontal rule spanning the panel.
func (a *Axes) AxHLine(y float64, kw Kw) error {
	return a.record("axhline", []any{y}, kw)
}

// AxVLine records a vertical rule spanning the panel.
func (a *Axes) AxVLine(x float64, kw Kw) error {
	return a.record("axvline", []any{x}, kw)
}

// AxHSpan records a horizontal shaded band.
func (a *Axes) AxHSpan(lo, hi float64, kw Kw) error {
	return a.record("axhspan", []any{lo, hi}, kw)
}

// AxVSpan records a vertical shaded band.
func (a *Axes) AxVSpan(lo, hi float64, kw Kw) error {
	return a.record("axvspan", []any{lo, hi}, kw)
}

// Text records a text annotation at data coordinates.
func (a *Axes) Text(x, y float64, text string, kw Kw) error {
	return a.record("text", []any{x, y, text}, kw)
}

// Annotate records a text annotation, optionally with an arrow when kw
// carries "xytext" and "arrowprops".
func (a *Axes) Annotate(text string, xy [2]float64, kw Kw) error {
	args := []any{text, []float64{xy[0], xy[1]}}
	if kw != nil {
		if xt, ok := kw["xytext"].([2]float64); ok {
			args = append(args, []float64{xt[0], xt[1]})
			kw = cloneKw(kw)
			delete(kw, "xytext")
		} else if xt, ok := kw["xytext"].([]float64); ok && len(xt) == 2 {
			args = append(args, xt)
			kw = cloneKw(kw)
			delete(kw, "xytext")
		}
	}
	return a.record("annotate", args, kw)
}

func cloneKw(kw Kw) Kw {
	out := make(Kw, len(kw)+2)
	for k, v := range kw {
		out[k] = v
	}
	return out
}
