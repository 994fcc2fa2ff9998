package gonumplot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/figdraw/figrec/codec"
)

// dashPattern maps a line style mnemonic to a vg dash pattern.
func dashPattern(style string) []vg.Length {
	switch style {
	case "--", "dashed":
		return []vg.Length{vg.Points(6), vg.Points(4)}
	case ":", "dotted":
		return []vg.Length{vg.Points(1), vg.Points(3)}
	case "-.", "dashdot":
		return []vg.Length{vg.Points(6), vg.Points(3), vg.Points(1), vg.Points(3)}
	}
	return nil
}

// axLine draws a horizontal or vertical rule at a fixed data coordinate,
// spanning a fraction of the panel in the other direction. It deliberately
// implements only plot.Plotter, so it never widens the data ranges.
type axLine struct {
	value      float64
	horizontal bool
	lo, hi     float64
	style      draw.LineStyle
}

func (l *axLine) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	if l.horizontal {
		y := trY(l.value)
		x0 := c.Min.X + vg.Length(l.lo)*(c.Max.X-c.Min.X)
		x1 := c.Min.X + vg.Length(l.hi)*(c.Max.X-c.Min.X)
		c.StrokeLine2(l.style, x0, y, x1, y)
		return
	}
	x := trX(l.value)
	y0 := c.Min.Y + vg.Length(l.lo)*(c.Max.Y-c.Min.Y)
	y1 := c.Min.Y + vg.Length(l.hi)*(c.Max.Y-c.Min.Y)
	c.StrokeLine2(l.style, x, y0, x, y1)
}

// axSpan fills a horizontal or vertical band between two data coordinates,
// spanning the full panel in the other direction.
type axSpan struct {
	lo, hi     float64
	horizontal bool
	color      color.Color
}

func (s *axSpan) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	var x0, x1, y0, y1 vg.Length
	if s.horizontal {
		x0, x1 = c.Min.X, c.Max.X
		y0, y1 = trY(s.lo), trY(s.hi)
	} else {
		x0, x1 = trX(s.lo), trX(s.hi)
		y0, y1 = c.Min.Y, c.Max.Y
	}
	var p vg.Path
	p.Move(vg.Point{X: x0, Y: y0})
	p.Line(vg.Point{X: x1, Y: y0})
	p.Line(vg.Point{X: x1, Y: y1})
	p.Line(vg.Point{X: x0, Y: y1})
	p.Close()
	c.SetColor(s.color)
	c.Fill(p)
}

// segment is one straight piece in data coordinates.
type segment struct {
	x0, y0, x1, y1 float64
}

// segments strokes independent line segments, optionally finishing each
// with an arrow head at its end point. Used for stem lines and annotation
// arrows.
type segments struct {
	segs  []segment
	style draw.LineStyle
	arrow bool
}

func (s *segments) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, sg := range s.segs {
		x0, y0 := trX(sg.x0), trY(sg.y0)
		x1, y1 := trX(sg.x1), trY(sg.y1)
		c.StrokeLine2(s.style, x0, y0, x1, y1)
		if s.arrow {
			s.head(c, x0, y0, x1, y1)
		}
	}
}

func (s *segments) head(c draw.Canvas, x0, y0, x1, y1 vg.Length) {
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	size := vg.Points(6)
	for _, da := range []float64{math.Pi * 5 / 6, -math.Pi * 5 / 6} {
		dx := vg.Length(math.Cos(angle+da)) * size
		dy := vg.Length(math.Sin(angle+da)) * size
		c.StrokeLine2(s.style, x1, y1, x1+dx, y1+dy)
	}
}

// matrixGrid adapts a codec matrix to the plotter grid interface used by
// heat maps and contours. Row 0 of the matrix is the top row of the image,
// so the y coordinate runs downward from Rows-1.
type matrixGrid struct {
	m       *codec.Array
	flipped bool

	// xs and ys optionally carry explicit grid coordinates; when absent
	// the cell indices are the coordinates.
	xs, ys []float64
}

func (g matrixGrid) Dims() (int, int) { return g.m.Cols, g.m.Rows }

func (g matrixGrid) X(c int) float64 {
	if c < len(g.xs) {
		return g.xs[c]
	}
	return float64(c)
}

func (g matrixGrid) Y(r int) float64 {
	if r < len(g.ys) {
		return g.ys[r]
	}
	return float64(r)
}

func (g matrixGrid) Z(c, r int) float64 {
	if g.flipped {
		return g.m.At(g.m.Rows-1-r, c)
	}
	return g.m.At(r, c)
}

// minMax returns the smallest and largest finite values of a matrix.
func minMax(m *codec.Array) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range m.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		lo, hi = 0, 1
	}
	return lo, hi
}
