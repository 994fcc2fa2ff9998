package gonumplot

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font
	bold     *opentype.Font
	italic   *opentype.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		bold, fontErr = opentype.Parse(gobold.TTF)
		if fontErr != nil {
			return
		}
		italic, fontErr = opentype.Parse(goitalic.TTF)
	})
	return fontErr
}

func fontFor(weight string) *opentype.Font {
	switch weight {
	case "bold":
		return bold
	case "italic":
		return italic
	}
	return regular
}

// textAnchor controls how drawText positions the string around (x, y).
type textAnchor struct {
	// hAlign: 0 left, 0.5 center, 1 right.
	hAlign float64
	// vAlign: 0 baseline-at-y top, 0.5 center, 1 bottom.
	vAlign float64
}

// drawText renders a string onto the image at pixel coordinates, anchored
// per align. size is in points at the given dpi.
func drawText(dst *image.RGBA, s string, x, y float64, size, dpi float64, col color.Color, weight string, align textAnchor) error {
	if s == "" {
		return nil
	}
	if err := loadFonts(); err != nil {
		return err
	}
	face, err := opentype.NewFace(fontFor(weight), &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(s)
	metrics := face.Metrics()
	height := metrics.Ascent + metrics.Descent

	px := fixed.I(int(x)) - fixed.Int26_6(float64(width)*align.hAlign)
	py := fixed.I(int(y)) + metrics.Ascent - fixed.Int26_6(float64(height)*align.vAlign)
	d.Dot = fixed.Point26_6{X: px, Y: py}
	d.DrawString(s)
	return nil
}

// drawTextRotated renders a string rotated 90 degrees counterclockwise,
// centered on (x, y). Used for the figure-level y label.
func drawTextRotated(dst *image.RGBA, s string, x, y float64, size, dpi float64, col color.Color, weight string) error {
	if s == "" {
		return nil
	}
	if err := loadFonts(); err != nil {
		return err
	}
	face, err := opentype.NewFace(fontFor(weight), &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	d := font.Drawer{Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(s).Ceil()
	metrics := face.Metrics()
	h := (metrics.Ascent + metrics.Descent).Ceil()
	if w <= 0 || h <= 0 {
		return nil
	}

	// Render horizontally into a scratch buffer, then transpose the pixels
	// into place.
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = scratch
	d.Dot = fixed.Point26_6{X: 0, Y: metrics.Ascent}
	d.DrawString(s)

	ox := int(x) - h/2
	oy := int(y) + w/2
	bounds := dst.Bounds()
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			c := scratch.RGBAAt(sx, sy)
			if c.A == 0 {
				continue
			}
			tx := ox + sy
			ty := oy - sx
			if image.Pt(tx, ty).In(bounds) {
				dst.SetRGBA(tx, ty, c)
			}
		}
	}
	return nil
}

// cloneRGBA copies any image into a mutable RGBA buffer.
func cloneRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}
