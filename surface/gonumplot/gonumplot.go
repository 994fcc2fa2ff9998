// Package gonumplot implements the drawing surface on top of
// gonum.org/v1/plot. It is the reference backend: always available, pure
// Go, rasterizing through the vgimg canvas.
//
// Import it for side effects to make the backend selectable:
//
//	import _ "github.com/figdraw/figrec/surface/gonumplot"
package gonumplot

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/figdraw/figrec/style"
	"github.com/figdraw/figrec/surface"
)

// Name is the backend's registry name.
const Name = "gonumplot"

func init() {
	surface.Register(Name, 10, func() (surface.Surface, error) {
		return NewSurface(), nil
	}, nil)
}

// figText is a stored figure-level text decoration, drawn at rasterize
// time onto the pixel buffer.
type figText struct {
	text   string
	kwargs map[string]any
}

// Surface is a grid of gonum plots with figure-level decorations.
type Surface struct {
	rows, cols int
	geom       surface.Geometry
	panels     []*panel

	suptitle  *figText
	supxlabel *figText
	supylabel *figText
}

// NewSurface returns an unallocated surface.
func NewSurface() *Surface { return &Surface{} }

// Allocate implements surface.Surface.
func (s *Surface) Allocate(rows, cols int, g surface.Geometry) error {
	if s.panels != nil {
		return fmt.Errorf("gonumplot: surface already allocated")
	}
	if rows < 1 || cols < 1 {
		return fmt.Errorf("gonumplot: invalid grid %dx%d", rows, cols)
	}
	if g.FigWidth <= 0 || g.FigHeight <= 0 {
		return fmt.Errorf("gonumplot: invalid figure size %gx%g", g.FigWidth, g.FigHeight)
	}
	s.rows, s.cols = rows, cols
	s.geom = g
	s.panels = make([]*panel, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s.panels[r*cols+c] = newPanel(s, r, c)
		}
	}
	return nil
}

// Panel implements surface.Surface.
func (s *Surface) Panel(row, col int) surface.Panel {
	if row < 0 || col < 0 || row >= s.rows || col >= s.cols {
		return nil
	}
	return s.panels[row*s.cols+col]
}

// ApplyStyle implements surface.Surface.
func (s *Surface) ApplyStyle(sp surface.Panel, st *style.Context) {
	p, ok := sp.(*panel)
	if !ok || st == nil {
		return
	}
	p.st = st
	pl := p.plot
	pl.Title.TextStyle.Font.Size = vg.Points(st.TitleSize)
	pl.X.Label.TextStyle.Font.Size = vg.Points(st.LabelSize)
	pl.Y.Label.TextStyle.Font.Size = vg.Points(st.LabelSize)
	pl.X.Tick.Label.Font.Size = vg.Points(st.TickSize)
	pl.Y.Tick.Label.Font.Size = vg.Points(st.TickSize)
	if st.FaceColor != "" {
		if col, err := style.ParseColor(st.FaceColor); err == nil {
			pl.BackgroundColor = col
		}
	}
	if st.Grid {
		pl.Add(plotter.NewGrid())
	}
}

// SupTitle implements surface.Surface.
func (s *Surface) SupTitle(text string, kwargs map[string]any) {
	s.suptitle = &figText{text: text, kwargs: kwargs}
}

// SupXLabel implements surface.Surface.
func (s *Surface) SupXLabel(text string, kwargs map[string]any) {
	s.supxlabel = &figText{text: text, kwargs: kwargs}
}

// SupYLabel implements surface.Surface.
func (s *Surface) SupYLabel(text string, kwargs map[string]any) {
	s.supylabel = &figText{text: text, kwargs: kwargs}
}

// PanelLabel implements surface.Surface.
func (s *Surface) PanelLabel(sp surface.Panel, label string, spec surface.PanelLabelSpec) {
	if p, ok := sp.(*panel); ok {
		p.label = label
		p.labelSpec = spec
	}
}

// margins derives the tile padding from the figure geometry, in canvas
// points. Figure-level decorations reserve extra space at the edges.
func (s *Surface) margins(w, h vg.Length) draw.Tiles {
	t := draw.Tiles{
		Rows:      s.rows,
		Cols:      s.cols,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(6),
		PadX:      vg.Points(12),
		PadY:      vg.Points(12),
	}
	if s.suptitle != nil {
		t.PadTop += 0.06 * h
	}
	if s.supxlabel != nil {
		t.PadBottom += 0.05 * h
	}
	if s.supylabel != nil {
		t.PadLeft += 0.04 * w
	}
	if s.geom.ConstrainedLayout {
		return t
	}
	for key, frac := range s.geom.Layout {
		switch key {
		case "left":
			t.PadLeft = vg.Length(frac) * w
		case "right":
			t.PadRight = (1 - vg.Length(frac)) * w
		case "bottom":
			t.PadBottom = vg.Length(frac) * h
		case "top":
			t.PadTop = (1 - vg.Length(frac)) * h
		case "wspace":
			t.PadX = vg.Length(frac) * w / vg.Length(s.cols)
		case "hspace":
			t.PadY = vg.Length(frac) * h / vg.Length(s.rows)
		}
	}
	return t
}

// Rasterize implements surface.Surface.
func (s *Surface) Rasterize(dpi float64) (image.Image, error) {
	if s.panels == nil {
		return nil, fmt.Errorf("gonumplot: surface not allocated")
	}
	if dpi <= 0 {
		dpi = s.geom.DPI
	}
	if dpi <= 0 {
		dpi = 100
	}

	w := vg.Length(s.geom.FigWidth) * vg.Inch
	h := vg.Length(s.geom.FigHeight) * vg.Inch
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(int(dpi)))
	dc := draw.New(c)

	tiles := s.margins(w, h)
	plots := make([][]*plot.Plot, s.rows)
	for r := 0; r < s.rows; r++ {
		plots[r] = make([]*plot.Plot, s.cols)
		for col := 0; col < s.cols; col++ {
			if p := s.panels[r*s.cols+col]; p.visible {
				plots[r][col] = p.plot
			}
		}
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := 0; r < s.rows; r++ {
		for col := 0; col < s.cols; col++ {
			if plots[r][col] != nil {
				plots[r][col].Draw(canvases[r][col])
			}
		}
	}

	img := cloneRGBA(c.Image())
	if err := s.decorate(img, canvases, dpi); err != nil {
		return nil, err
	}
	return img, nil
}

// decorate draws figure-level text and panel labels onto the rasterized
// buffer. Canvas coordinates are points with the origin at the bottom
// left; image coordinates are pixels with the origin at the top left.
func (s *Surface) decorate(img *image.RGBA, canvases [][]draw.Canvas, dpi float64) error {
	px := dpi / vg.Inch.Points()
	widthPx := float64(img.Bounds().Dx())
	heightPx := float64(img.Bounds().Dy())

	if t := s.suptitle; t != nil {
		size := kwFloat(t.kwargs, "fontsize", 14)
		err := drawText(img, t.text, widthPx/2, 0.5*size*px, size, dpi,
			color.Black, kwString(t.kwargs, "fontweight", "bold"),
			textAnchor{hAlign: 0.5})
		if err != nil {
			return err
		}
	}
	if t := s.supxlabel; t != nil {
		size := kwFloat(t.kwargs, "fontsize", 12)
		err := drawText(img, t.text, widthPx/2, heightPx-1.8*size*px, size, dpi,
			color.Black, kwString(t.kwargs, "fontweight", ""),
			textAnchor{hAlign: 0.5})
		if err != nil {
			return err
		}
	}
	if t := s.supylabel; t != nil {
		size := kwFloat(t.kwargs, "fontsize", 12)
		err := drawTextRotated(img, t.text, size*px, heightPx/2, size, dpi,
			color.Black, kwString(t.kwargs, "fontweight", ""))
		if err != nil {
			return err
		}
	}

	for r := range canvases {
		for col := range canvases[r] {
			p := s.panels[r*s.cols+col]
			if p.label == "" || !p.visible {
				continue
			}
			rect := canvases[r][col].Rectangle
			spec := p.labelSpec
			size := spec.FontSize
			if size == 0 {
				size = 12
			}
			x := float64(rect.Min.X)*px + spec.OffsetX*px
			y := heightPx - float64(rect.Max.Y)*px - spec.OffsetY*px - size*px
			if spec.Loc == "upper right" {
				x = float64(rect.Max.X)*px - spec.OffsetX*px
			}
			textCol := color.Color(color.Black)
			if spec.Color != "" {
				if c, err := style.ParseColor(spec.Color); err == nil {
					textCol = c
				}
			}
			weight := spec.FontWeight
			if weight == "" {
				weight = "bold"
			}
			if err := drawText(img, p.label, x, y, size, dpi, textCol, weight, textAnchor{}); err != nil {
				return err
			}
		}
	}
	return nil
}
