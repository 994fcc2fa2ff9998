package gonumplot

import (
	"errors"
	"image/color"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// groupPositions returns the center position of each group, honoring an
// explicit positions kwarg and defaulting to 1..n.
func groupPositions(kwargs map[string]any, n int) []float64 {
	if pos, ok := kwVector(kwargs, "positions"); ok && len(pos) == n {
		return pos
	}
	pos := make([]float64, n)
	for i := range pos {
		pos[i] = float64(i + 1)
	}
	return pos
}

func (p *panel) opBoxplot(args []any, kwargs map[string]any) error {
	groups, ok := asGroups(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: boxplot requires sample groups")
	}
	positions := groupPositions(kwargs, len(groups))
	width := vg.Points(kwFloat(kwargs, "widths", 0.5) * 40)
	vert := kwBool(kwargs, "vert", true)

	for i, g := range groups {
		if len(g) == 0 {
			continue
		}
		if vert {
			b, err := plotter.NewBoxPlot(width, positions[i], plotter.Values(g))
			if err != nil {
				return err
			}
			if !kwBool(kwargs, "showfliers", true) {
				b.Outside = nil
			}
			p.plot.Add(b)
		} else {
			p.plot.Add(newHorizBox(width, positions[i], g, kwBool(kwargs, "showfliers", true)))
		}
	}
	return nil
}

// horizBox draws one horizontal box-and-whisker group. gonum/plot only
// exports the vertical box plot, so the horizontal orientation is drawn
// directly: quartile box, median line, whiskers at the most extreme
// samples within 1.5 IQR of the box, fliers beyond as glyphs.
type horizBox struct {
	pos        float64
	width      vg.Length
	q1, med    float64
	q3         float64
	lo, hi     float64
	fliers     []float64
	showFliers bool
	style      draw.LineStyle
}

func newHorizBox(width vg.Length, pos float64, samples []float64, showFliers bool) *horizBox {
	s := sortedCopy(samples)
	b := &horizBox{
		pos:        pos,
		width:      width,
		q1:         stat.Quantile(0.25, stat.Empirical, s, nil),
		med:        stat.Quantile(0.5, stat.Empirical, s, nil),
		q3:         stat.Quantile(0.75, stat.Empirical, s, nil),
		showFliers: showFliers,
		style:      draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
	}
	iqr := b.q3 - b.q1
	loFence, hiFence := b.q1-1.5*iqr, b.q3+1.5*iqr
	b.lo, b.hi = b.q1, b.q3
	first := true
	for _, v := range s {
		if v < loFence || v > hiFence {
			b.fliers = append(b.fliers, v)
			continue
		}
		if first {
			b.lo = v
			first = false
		}
		b.hi = v
	}
	return b
}

// Plot implements plot.Plotter.
func (b *horizBox) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	y := trY(b.pos)
	half := b.width / 2
	x1, x2, xm := trX(b.q1), trX(b.q3), trX(b.med)

	c.StrokeLine2(b.style, x1, y-half, x2, y-half)
	c.StrokeLine2(b.style, x1, y+half, x2, y+half)
	c.StrokeLine2(b.style, x1, y-half, x1, y+half)
	c.StrokeLine2(b.style, x2, y-half, x2, y+half)
	c.StrokeLine2(b.style, xm, y-half, xm, y+half)

	lo, hi := trX(b.lo), trX(b.hi)
	c.StrokeLine2(b.style, lo, y, x1, y)
	c.StrokeLine2(b.style, x2, y, hi, y)
	cap := half / 2
	c.StrokeLine2(b.style, lo, y-cap, lo, y+cap)
	c.StrokeLine2(b.style, hi, y-cap, hi, y+cap)

	if b.showFliers {
		gs := draw.GlyphStyle{
			Color:  b.style.Color,
			Radius: vg.Points(2),
			Shape:  draw.CircleGlyph{},
		}
		for _, v := range b.fliers {
			c.DrawGlyph(gs, vg.Point{X: trX(v), Y: y})
		}
	}
}

// DataRange implements plot.DataRanger.
func (b *horizBox) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = b.lo, b.hi
	for _, v := range b.fliers {
		xmin = math.Min(xmin, v)
		xmax = math.Max(xmax, v)
	}
	return xmin, xmax, b.pos - 0.5, b.pos + 0.5
}

// kde evaluates a gaussian kernel density estimate of samples over a grid
// of points. Bandwidth follows Silverman's rule.
func kde(samples []float64) (xs, dens []float64) {
	n := len(samples)
	if n == 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	sigma := stat.StdDev(sorted, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		sigma = 1
	}
	bw := 1.06 * sigma * math.Pow(float64(n), -0.2)

	lo := sorted[0] - 3*bw
	hi := sorted[n-1] + 3*bw
	xs = linspace(lo, hi, 64)
	dens = make([]float64, len(xs))
	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	for i, x := range xs {
		sum := 0.0
		for _, s := range sorted {
			u := (x - s) / bw
			sum += math.Exp(-0.5 * u * u)
		}
		dens[i] = sum * norm
	}
	return xs, dens
}

func (p *panel) opViolin(args []any, kwargs map[string]any) error {
	groups, ok := asGroups(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: violinplot requires sample groups")
	}
	positions := groupPositions(kwargs, len(groups))
	halfWidth := kwFloat(kwargs, "widths", 0.5) / 2

	for i, g := range groups {
		if len(g) < 2 {
			continue
		}
		ys, dens := kde(g)
		maxDens := 0.0
		for _, d := range dens {
			if d > maxDens {
				maxDens = d
			}
		}
		if maxDens == 0 {
			continue
		}
		scale := halfWidth / maxDens

		ring := make(plotter.XYs, 0, 2*len(ys))
		for j := range ys {
			ring = append(ring, plotter.XY{X: positions[i] + dens[j]*scale, Y: ys[j]})
		}
		for j := len(ys) - 1; j >= 0; j-- {
			ring = append(ring, plotter.XY{X: positions[i] - dens[j]*scale, Y: ys[j]})
		}
		poly, err := plotter.NewPolygon(ring)
		if err != nil {
			return err
		}
		col := p.nextColor(kwargs, "color")
		poly.Color = withAlpha(col, kwFloat(kwargs, "alpha", 0.5))
		p.plot.Add(poly)

		if kwBool(kwargs, "showmedians", false) {
			med := stat.Quantile(0.5, stat.Empirical, sortedCopy(g), nil)
			p.plot.Add(&segments{
				segs:  []segment{{x0: positions[i] - halfWidth, y0: med, x1: positions[i] + halfWidth, y1: med}},
				style: draw.LineStyle{Color: col, Width: vg.Points(1)},
			})
		}
		if kwBool(kwargs, "showmeans", false) {
			mean := stat.Mean(g, nil)
			p.plot.Add(&segments{
				segs:  []segment{{x0: positions[i] - halfWidth, y0: mean, x1: positions[i] + halfWidth, y1: mean}},
				style: draw.LineStyle{Color: col, Width: vg.Points(1), Dashes: dashPattern("--")},
			})
		}
	}
	return nil
}

func (p *panel) opSwarm(args []any, kwargs map[string]any) error {
	groups, ok := asGroups(argAt(args, 0))
	if !ok {
		return errors.New("gonumplot: swarmplot requires sample groups")
	}
	positions := groupPositions(kwargs, len(groups))
	size := kwFloat(kwargs, "size", 5)

	// A fixed seed keeps the jitter identical across replays, so the same
	// recipe always rasterizes to the same pixels.
	rng := rand.New(rand.NewSource(0))

	for i, g := range groups {
		xys := make(plotter.XYs, len(g))
		for j, v := range g {
			xys[j].X = positions[i] + (rng.Float64()-0.5)*0.6
			xys[j].Y = v
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		col := p.nextColor(kwargs, "color")
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  withAlpha(col, kwFloat(kwargs, "alpha", 1)),
			Radius: vg.Points(size / 2),
			Shape:  draw.CircleGlyph{},
		}
		p.plot.Add(sc)
	}
	return nil
}

func sortedCopy(v []float64) []float64 {
	out := append([]float64(nil), v...)
	sort.Float64s(out)
	return out
}
