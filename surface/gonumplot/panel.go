package gonumplot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/figdraw/figrec/style"
	"github.com/figdraw/figrec/surface"
)

// ErrUnknownOp is returned by Invoke for operation names outside the
// panel's dispatch table.
var ErrUnknownOp = errors.New("gonumplot: unknown operation")

type legendEntry struct {
	label string
	thumb plot.Thumbnailer
}

// panel is one cell of the surface grid, backed by a gonum plot.
type panel struct {
	surf     *Surface
	row, col int
	plot     *plot.Plot
	st       *style.Context
	visible  bool

	series  int
	pending []legendEntry
	results int

	label     string
	labelSpec surface.PanelLabelSpec
}

func newPanel(s *Surface, row, col int) *panel {
	p := &panel{
		surf:    s,
		row:     row,
		col:     col,
		plot:    plot.New(),
		st:      style.Default(),
		visible: true,
	}
	p.plot.X.Padding = 0
	p.plot.Y.Padding = 0
	return p
}

// SetVisible implements surface.Panel.
func (p *panel) SetVisible(visible bool) { p.visible = visible }

// Invoke implements surface.Panel.
func (p *panel) Invoke(op string, args []any, kwargs map[string]any) (surface.Result, error) {
	switch op {
	case "plot":
		return nil, p.opPlot(args, kwargs)
	case "scatter":
		return nil, p.opScatter(args, kwargs)
	case "bar":
		return nil, p.opBar(args, kwargs, false)
	case "barh":
		return nil, p.opBar(args, kwargs, true)
	case "hist":
		return nil, p.opHist(args, kwargs)
	case "step":
		return nil, p.opStep(args, kwargs)
	case "stem":
		return nil, p.opStem(args, kwargs)
	case "errorbar":
		return nil, p.opErrorbar(args, kwargs)
	case "fill_between":
		return nil, p.opFillBetween(args, kwargs)
	case "imshow":
		return nil, p.opImshow(args, kwargs)
	case "contour":
		return p.opContour(args, kwargs, false)
	case "contourf":
		return p.opContour(args, kwargs, true)
	case "clabel":
		return nil, p.opClabel(args, kwargs)
	case "boxplot":
		return nil, p.opBoxplot(args, kwargs)
	case "violinplot":
		return nil, p.opViolin(args, kwargs)
	case "swarmplot":
		return nil, p.opSwarm(args, kwargs)

	case "set_xlabel":
		p.plot.X.Label.Text = stringArg(argAt(args, 0), kwString(kwargs, "xlabel", ""))
		if sz := kwFloat(kwargs, "fontsize", 0); sz > 0 {
			p.plot.X.Label.TextStyle.Font.Size = vg.Points(sz)
		}
		return nil, nil
	case "set_ylabel":
		p.plot.Y.Label.Text = stringArg(argAt(args, 0), kwString(kwargs, "ylabel", ""))
		if sz := kwFloat(kwargs, "fontsize", 0); sz > 0 {
			p.plot.Y.Label.TextStyle.Font.Size = vg.Points(sz)
		}
		return nil, nil
	case "set_title":
		p.plot.Title.Text = stringArg(argAt(args, 0), kwString(kwargs, "label", ""))
		if sz := kwFloat(kwargs, "fontsize", 0); sz > 0 {
			p.plot.Title.TextStyle.Font.Size = vg.Points(sz)
		}
		return nil, nil
	case "set_xlim":
		return nil, p.opLim(&p.plot.X, args, kwargs, "left", "right")
	case "set_ylim":
		return nil, p.opLim(&p.plot.Y, args, kwargs, "bottom", "top")
	case "set_xscale":
		return nil, setScale(&p.plot.X, stringArg(argAt(args, 0), "linear"))
	case "set_yscale":
		return nil, setScale(&p.plot.Y, stringArg(argAt(args, 0), "linear"))
	case "legend":
		return nil, p.opLegend(kwargs)
	case "grid":
		return nil, p.opGrid(args, kwargs)
	case "axhline":
		return nil, p.opAxLine(args, kwargs, true)
	case "axvline":
		return nil, p.opAxLine(args, kwargs, false)
	case "axhspan":
		return nil, p.opAxSpan(args, kwargs, true)
	case "axvspan":
		return nil, p.opAxSpan(args, kwargs, false)
	case "text":
		return nil, p.opText(args, kwargs)
	case "annotate":
		return nil, p.opAnnotate(args, kwargs)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

// nextColor resolves the trace color: explicit kwarg first, then the
// palette cycle. Each palette pick advances the cycle.
func (p *panel) nextColor(kwargs map[string]any, keys ...string) color.Color {
	for _, key := range keys {
		if s := kwString(kwargs, key, ""); s != "" {
			if col, err := style.ParseColor(s); err == nil {
				return col
			}
		}
	}
	col := p.st.Color(p.series)
	p.series++
	return col
}

func withAlpha(col color.Color, alpha float64) color.Color {
	if alpha >= 1 || alpha < 0 {
		return col
	}
	r, g, b, a := col.RGBA()
	return color.NRGBA64{
		R: uint16(r), G: uint16(g), B: uint16(b),
		A: uint16(float64(a) * alpha),
	}
}

func (p *panel) lineStyle(kwargs map[string]any, col color.Color) draw.LineStyle {
	width := kwFloat(kwargs, "linewidth", p.st.LineWidth)
	return draw.LineStyle{
		Color:  withAlpha(col, kwFloat(kwargs, "alpha", 1)),
		Width:  vg.Points(width),
		Dashes: dashPattern(kwString(kwargs, "linestyle", "-")),
	}
}

// addLegend queues a legend entry; entries appear when the legend
// operation runs.
func (p *panel) addLegend(kwargs map[string]any, thumb plot.Thumbnailer) {
	if label := kwString(kwargs, "label", ""); label != "" {
		p.pending = append(p.pending, legendEntry{label: label, thumb: thumb})
	}
}

// xyArgs extracts the leading x, y pair, treating a single vector as y
// against its indices.
func xyArgs(args []any) (plotter.XYs, error) {
	x, okX := asVector(argAt(args, 0))
	if !okX {
		return nil, errors.New("gonumplot: missing x data")
	}
	if y, okY := asVector(argAt(args, 1)); okY {
		return makeXYs(x, y)
	}
	return indexXYs(x), nil
}

func (p *panel) opPlot(args []any, kwargs map[string]any) error {
	xys, err := xyArgs(args)
	if err != nil {
		return err
	}
	fmtColor, fmtMarker, fmtLine := parseFormat(stringArg(argAt(args, 2), ""))
	if fmtColor != "" && kwString(kwargs, "color", "") == "" {
		kwargs = withKwarg(kwargs, "color", fmtColor)
	}
	if fmtLine != "" && kwString(kwargs, "linestyle", "") == "" {
		kwargs = withKwarg(kwargs, "linestyle", fmtLine)
	}
	marker := kwString(kwargs, "marker", fmtMarker)

	col := p.nextColor(kwargs, "color")
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle = p.lineStyle(kwargs, col)
	p.plot.Add(line)
	p.addLegend(kwargs, line)

	if marker != "" && marker != "None" {
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  line.LineStyle.Color,
			Radius: vg.Points(3),
			Shape:  glyphShape(marker),
		}
		p.plot.Add(sc)
	}
	return nil
}

func (p *panel) opScatter(args []any, kwargs map[string]any) error {
	xys, err := xyArgs(args)
	if err != nil {
		return err
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	size := kwFloat(kwargs, "s", floatArg(argAt(args, 2), 36))
	if size <= 0 {
		size = 36
	}
	col := p.nextColor(kwargs, "color", "c")
	sc.GlyphStyle = draw.GlyphStyle{
		Color: withAlpha(col, kwFloat(kwargs, "alpha", 1)),
		// Marker sizes are areas in points squared.
		Radius: vg.Points(math.Sqrt(size) / 2),
		Shape:  glyphShape(kwString(kwargs, "marker", "o")),
	}
	p.plot.Add(sc)
	p.addLegend(kwargs, sc)
	return nil
}

func (p *panel) opBar(args []any, kwargs map[string]any, horizontal bool) error {
	pos, ok := asVector(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: missing bar positions")
	}
	heights, ok := asVector(argAt(args, 1))
	if !ok {
		return errors.New("gonumplot: missing bar heights")
	}
	if len(heights) != len(pos) {
		return fmt.Errorf("gonumplot: bar positions and heights differ: %d vs %d", len(pos), len(heights))
	}

	widthKey := "width"
	if horizontal {
		widthKey = "height"
	}
	width := kwFloat(kwargs, widthKey, floatArg(argAt(args, 2), 0.8))
	bars, err := plotter.NewBarChart(plotter.Values(heights), vg.Points(width*40))
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		bars.XMin = pos[0]
	}
	bars.Horizontal = horizontal
	bars.Color = withAlpha(p.nextColor(kwargs, "color"), kwFloat(kwargs, "alpha", 1))
	bars.LineStyle.Width = 0
	p.plot.Add(bars)
	p.addLegend(kwargs, bars)
	return nil
}

func (p *panel) opHist(args []any, kwargs map[string]any) error {
	samples, ok := asVector(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: missing histogram samples")
	}
	bins := int(kwFloat(kwargs, "bins", floatArg(argAt(args, 1), 10)))
	if bins <= 0 {
		bins = 10
	}
	h, err := plotter.NewHist(plotter.Values(samples), bins)
	if err != nil {
		return err
	}
	if kwBool(kwargs, "density", false) {
		h.Normalize(1)
	}
	h.FillColor = withAlpha(p.nextColor(kwargs, "color"), kwFloat(kwargs, "alpha", 1))
	p.plot.Add(h)
	p.addLegend(kwargs, h)
	return nil
}

func (p *panel) opStep(args []any, kwargs map[string]any) error {
	xys, err := xyArgs(args)
	if err != nil {
		return err
	}
	stepped := make(plotter.XYs, 0, 2*len(xys))
	where := kwString(kwargs, "where", "pre")
	for i, pt := range xys {
		if i > 0 {
			prev := xys[i-1]
			switch where {
			case "post":
				stepped = append(stepped, plotter.XY{X: pt.X, Y: prev.Y})
			case "mid":
				mid := (prev.X + pt.X) / 2
				stepped = append(stepped,
					plotter.XY{X: mid, Y: prev.Y},
					plotter.XY{X: mid, Y: pt.Y})
			default: // pre
				stepped = append(stepped, plotter.XY{X: prev.X, Y: pt.Y})
			}
		}
		stepped = append(stepped, pt)
	}
	line, err := plotter.NewLine(stepped)
	if err != nil {
		return err
	}
	line.LineStyle = p.lineStyle(kwargs, p.nextColor(kwargs, "color"))
	p.plot.Add(line)
	p.addLegend(kwargs, line)
	return nil
}

func (p *panel) opStem(args []any, kwargs map[string]any) error {
	xys, err := xyArgs(args)
	if err != nil {
		return err
	}
	col := p.nextColor(kwargs, "color")
	segs := make([]segment, len(xys))
	for i, pt := range xys {
		segs[i] = segment{x0: pt.X, y0: 0, x1: pt.X, y1: pt.Y}
	}
	p.plot.Add(&segments{
		segs:  segs,
		style: draw.LineStyle{Color: col, Width: vg.Points(1)},
	})
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle = draw.GlyphStyle{Color: col, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
	p.plot.Add(sc)
	p.addLegend(kwargs, sc)
	return nil
}

// xyErrData couples points with their per-point error extents.
type xyErrData struct {
	plotter.XYs
	plotter.YErrors
}

type xyErrDataX struct {
	plotter.XYs
	plotter.XErrors
}

func symmetricErrors(errs []float64) plotter.Errors {
	out := make(plotter.Errors, len(errs))
	for i, e := range errs {
		out[i].Low = e
		out[i].High = e
	}
	return out
}

func (p *panel) opErrorbar(args []any, kwargs map[string]any) error {
	xys, err := xyArgs(args)
	if err != nil {
		return err
	}
	col := p.nextColor(kwargs, "color")
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle = p.lineStyle(kwargs, col)
	p.plot.Add(line)
	p.addLegend(kwargs, line)

	if yerr, ok := asVector(argAt(args, 2)); ok && len(yerr) == len(xys) {
		bars, err := plotter.NewYErrorBars(xyErrData{
			XYs:     xys,
			YErrors: plotter.YErrors(symmetricErrors(yerr)),
		})
		if err != nil {
			return err
		}
		bars.LineStyle.Color = col
		p.plot.Add(bars)
	}
	if xerr, ok := asVector(argAt(args, 3)); ok && len(xerr) == len(xys) {
		bars, err := plotter.NewXErrorBars(xyErrDataX{
			XYs:     xys,
			XErrors: plotter.XErrors(symmetricErrors(xerr)),
		})
		if err != nil {
			return err
		}
		bars.LineStyle.Color = col
		p.plot.Add(bars)
	}
	return nil
}

func (p *panel) opFillBetween(args []any, kwargs map[string]any) error {
	x, ok := asVector(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: missing x data")
	}
	y1, ok := asVector(argAt(args, 1))
	if !ok || len(y1) != len(x) {
		return errors.New("gonumplot: missing y1 data")
	}
	y2, ok := asVector(argAt(args, 2))
	if !ok {
		y2 = make([]float64, len(x))
	} else if len(y2) == 1 {
		base := y2[0]
		y2 = make([]float64, len(x))
		for i := range y2 {
			y2[i] = base
		}
	}
	if len(y2) != len(x) {
		return errors.New("gonumplot: y2 length mismatch")
	}

	ring := make(plotter.XYs, 0, 2*len(x))
	for i := range x {
		ring = append(ring, plotter.XY{X: x[i], Y: y1[i]})
	}
	for i := len(x) - 1; i >= 0; i-- {
		ring = append(ring, plotter.XY{X: x[i], Y: y2[i]})
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return err
	}
	alpha := kwFloat(kwargs, "alpha", 0.3)
	poly.Color = withAlpha(p.nextColor(kwargs, "color"), alpha)
	poly.LineStyle.Width = 0
	p.plot.Add(poly)
	p.addLegend(kwargs, poly)
	return nil
}

func (p *panel) opImshow(args []any, kwargs map[string]any) error {
	m, ok := asMatrix(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: imshow requires a matrix")
	}
	grid := matrixGrid{m: m, flipped: kwString(kwargs, "origin", "upper") != "lower"}
	hm := plotter.NewHeatMap(grid, newCmapPalette(kwString(kwargs, "cmap", defaultCmap), 255))
	lo, hi := minMax(m)
	hm.Min = kwFloat(kwargs, "vmin", lo)
	hm.Max = kwFloat(kwargs, "vmax", hi)
	p.plot.Add(hm)
	return nil
}

// contourResult is the referenceable handle contouring returns; clabel
// resolves it back to the level geometry.
type contourResult struct {
	*surface.Handle
	grid   matrixGrid
	levels []float64
}

func (p *panel) opContour(args []any, kwargs map[string]any, filled bool) (surface.Result, error) {
	m, ok := asMatrix(argAt(args, 0))
	var xs, ys []float64
	if !ok {
		// contour(X, Y, Z) form: the matrix is the third argument.
		xs, _ = asVector(argAt(args, 0))
		ys, _ = asVector(argAt(args, 1))
		if m, ok = asMatrix(argAt(args, 2)); !ok {
			return nil, errors.New("gonumplot: contour requires a matrix")
		}
	}

	levels, hasLevels := kwVector(kwargs, "levels")
	if !hasLevels {
		if lv, ok := asVector(argAt(args, 3)); ok {
			levels = lv
		} else {
			lo, hi := minMax(m)
			levels = linspace(lo, hi, 7)
		}
	}
	grid := matrixGrid{m: m, xs: xs, ys: ys}

	if filled {
		hm := plotter.NewHeatMap(grid, newCmapPalette(kwString(kwargs, "cmap", defaultCmap), len(levels)))
		lo, hi := minMax(m)
		hm.Min, hm.Max = lo, hi
		p.plot.Add(hm)
	} else {
		c := plotter.NewContour(grid, levels, newCmapPalette(kwString(kwargs, "cmap", defaultCmap), len(levels)))
		p.plot.Add(c)
	}

	p.results++
	id := fmt.Sprintf("contour_%d_%d_%d", p.row, p.col, p.results)
	return &contourResult{Handle: surface.NewHandle(id), grid: grid, levels: levels}, nil
}

func (p *panel) opClabel(args []any, kwargs map[string]any) error {
	res, ok := argAt(args, 0).(*contourResult)
	if !ok {
		return errors.New("gonumplot: clabel requires a contour result")
	}
	cols, rows := res.grid.Dims()
	labels := plotter.XYLabels{}
	for _, level := range res.levels {
		// Label the grid cell whose value is closest to the level.
		best, bestDiff := -1, 0.0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				d := math.Abs(res.grid.Z(c, r) - level)
				if best < 0 || d < bestDiff {
					best, bestDiff = r*cols+c, d
				}
			}
		}
		if best < 0 {
			continue
		}
		labels.XYs = append(labels.XYs, plotter.XY{
			X: res.grid.X(best % cols),
			Y: res.grid.Y(best / cols),
		})
		labels.Labels = append(labels.Labels, trimFloat(level))
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	if sz := kwFloat(kwargs, "fontsize", 0); sz > 0 {
		for i := range l.TextStyle {
			l.TextStyle[i].Font.Size = vg.Points(sz)
		}
	}
	p.plot.Add(l)
	return nil
}

func (p *panel) opLim(ax *plot.Axis, args []any, kwargs map[string]any, loKey, hiKey string) error {
	if v := argAt(args, 0); v != nil {
		ax.Min = floatArg(v, ax.Min)
	}
	if v := argAt(args, 1); v != nil {
		ax.Max = floatArg(v, ax.Max)
	}
	if v, ok := kwargs[loKey]; ok {
		ax.Min = floatArg(v, ax.Min)
	}
	if v, ok := kwargs[hiKey]; ok {
		ax.Max = floatArg(v, ax.Max)
	}
	return nil
}

func setScale(ax *plot.Axis, scale string) error {
	switch scale {
	case "log":
		ax.Scale = plot.LogScale{}
		ax.Tick.Marker = plot.LogTicks{Prec: -1}
	case "linear", "":
		ax.Scale = plot.LinearScale{}
		ax.Tick.Marker = plot.DefaultTicks{}
	default:
		return fmt.Errorf("gonumplot: unsupported scale %q", scale)
	}
	return nil
}

func (p *panel) opLegend(kwargs map[string]any) error {
	for _, e := range p.pending {
		p.plot.Legend.Add(e.label, e.thumb)
	}
	p.pending = nil
	loc := kwString(kwargs, "loc", "best")
	p.plot.Legend.Top = !strings.Contains(loc, "lower")
	p.plot.Legend.Left = strings.Contains(loc, "left")
	if sz := kwFloat(kwargs, "fontsize", 0); sz > 0 {
		p.plot.Legend.TextStyle.Font.Size = vg.Points(sz)
	}
	return nil
}

func (p *panel) opGrid(args []any, kwargs map[string]any) error {
	visible := kwBool(kwargs, "visible", true)
	if v, ok := argAt(args, 0).(bool); ok {
		visible = v
	}
	if !visible {
		return nil
	}
	g := plotter.NewGrid()
	if s := kwString(kwargs, "color", ""); s != "" {
		if col, err := style.ParseColor(s); err == nil {
			g.Vertical.Color = col
			g.Horizontal.Color = col
		}
	}
	p.plot.Add(g)
	return nil
}

func (p *panel) opAxLine(args []any, kwargs map[string]any, horizontal bool) error {
	value := floatArg(argAt(args, 0), 0)
	loKey, hiKey := "xmin", "xmax"
	if !horizontal {
		loKey, hiKey = "ymin", "ymax"
	}
	col := p.nextColor(kwargs, "color")
	p.plot.Add(&axLine{
		value:      value,
		horizontal: horizontal,
		lo:         kwFloat(kwargs, loKey, 0),
		hi:         kwFloat(kwargs, hiKey, 1),
		style:      p.lineStyle(kwargs, col),
	})
	return nil
}

func (p *panel) opAxSpan(args []any, kwargs map[string]any, horizontal bool) error {
	lo := floatArg(argAt(args, 0), 0)
	hi := floatArg(argAt(args, 1), 0)
	col := p.nextColor(kwargs, "color")
	p.plot.Add(&axSpan{
		lo:         lo,
		hi:         hi,
		horizontal: horizontal,
		color:      withAlpha(col, kwFloat(kwargs, "alpha", 0.3)),
	})
	return nil
}

func (p *panel) opText(args []any, kwargs map[string]any) error {
	x := floatArg(argAt(args, 0), 0)
	y := floatArg(argAt(args, 1), 0)
	s := stringArg(argAt(args, 2), "")
	return p.placeText(x, y, s, kwargs)
}

func (p *panel) opAnnotate(args []any, kwargs map[string]any) error {
	s := stringArg(argAt(args, 0), "")
	xy, ok := asVector(argAt(args, 1))
	if !ok || len(xy) != 2 {
		return errors.New("gonumplot: annotate requires an xy pair")
	}
	tx, ty := xy[0], xy[1]
	if xytext, ok := asVector(argAt(args, 2)); ok && len(xytext) == 2 {
		tx, ty = xytext[0], xytext[1]
		if _, hasArrow := kwargs["arrowprops"]; hasArrow {
			p.plot.Add(&segments{
				segs:  []segment{{x0: tx, y0: ty, x1: xy[0], y1: xy[1]}},
				style: draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
				arrow: true,
			})
		}
	}
	return p.placeText(tx, ty, s, kwargs)
}

func (p *panel) placeText(x, y float64, s string, kwargs map[string]any) error {
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: x, Y: y}},
		Labels: []string{s},
	})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		if sz := kwFloat(kwargs, "fontsize", 0); sz > 0 {
			l.TextStyle[i].Font.Size = vg.Points(sz)
		}
		if cs := kwString(kwargs, "color", ""); cs != "" {
			if col, err := style.ParseColor(cs); err == nil {
				l.TextStyle[i].Color = col
			}
		}
	}
	p.plot.Add(l)
	return nil
}

func withKwarg(kwargs map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(kwargs)+1)
	for k, v := range kwargs {
		out[k] = v
	}
	out[key] = value
	return out
}

// parseFormat splits a shorthand format string like "ro--" into its
// color, marker and line style parts.
func parseFormat(format string) (colorPart, marker, line string) {
	rest := format
	for _, ls := range []string{"--", "-.", "-", ":"} {
		if i := strings.Index(rest, ls); i >= 0 {
			line = ls
			rest = rest[:i] + rest[i+len(ls):]
			break
		}
	}
	for _, r := range rest {
		switch r {
		case 'b', 'g', 'r', 'c', 'm', 'y', 'k', 'w':
			colorPart = string(r)
		case 'o', 's', '^', 'v', 'd', 'D', 'x', '+', '*', '.', 'p', 'h':
			marker = string(r)
		}
	}
	return colorPart, marker, line
}

func glyphShape(marker string) draw.GlyphDrawer {
	switch marker {
	case "s":
		return draw.BoxGlyph{}
	case "^", "v":
		return draw.PyramidGlyph{}
	case "+":
		return draw.PlusGlyph{}
	case "x":
		return draw.CrossGlyph{}
	case ".":
		return draw.CircleGlyph{}
	case "D", "d":
		return draw.SquareGlyph{}
	case "*":
		return draw.RingGlyph{}
	}
	return draw.CircleGlyph{}
}

func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
