package gonumplot

import (
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
)

// cmapStops lists the anchor colors of each supported colormap, evenly
// spaced over [0, 1]. Blending between anchors happens in Lab space.
var cmapStops = map[string][]string{
	"viridis":  {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"plasma":   {"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"},
	"magma":    {"#000004", "#51127c", "#b73779", "#fc8961", "#fcfdbf"},
	"inferno":  {"#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"},
	"coolwarm": {"#3b4cc0", "#dddddd", "#b40426"},
	"gray":     {"#000000", "#ffffff"},
	"greys":    {"#ffffff", "#000000"},
	"hot":      {"#0b0000", "#e60000", "#ffd200", "#ffffff"},
}

const defaultCmap = "viridis"

// cmapColor evaluates a colormap at t in [0, 1].
func cmapColor(name string, t float64) color.Color {
	stops, ok := cmapStops[strings.ToLower(name)]
	if !ok {
		stops = cmapStops[defaultCmap]
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	seg := float64(len(stops) - 1)
	i := int(t * seg)
	if i >= len(stops)-1 {
		i = len(stops) - 2
	}
	frac := t*seg - float64(i)
	from, err1 := colorful.Hex(stops[i])
	to, err2 := colorful.Hex(stops[i+1])
	if err1 != nil || err2 != nil {
		return color.Black
	}
	return from.BlendLab(to, frac).Clamped()
}

// cmapPalette samples a colormap into a discrete gonum/plot palette.
type cmapPalette struct {
	colors []color.Color
}

func (p cmapPalette) Colors() []color.Color { return p.colors }

// newCmapPalette builds an n-color palette from the named colormap.
func newCmapPalette(name string, n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	cols := make([]color.Color, n)
	for i := range cols {
		cols[i] = cmapColor(name, float64(i)/float64(n-1))
	}
	return cmapPalette{colors: cols}
}
