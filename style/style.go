// Package style holds the appearance parameters consulted by the recorder
// and the replay engine when a call does not specify an explicit value.
//
// The style is an explicit value threaded through recording and replay
// rather than ambient global state. A process-wide default instance exists
// for ergonomic parity ([Default] / [SetDefault]); callers treat it as
// configuration set once before a batch of recordings, not something
// toggled mid-recording.
package style

import (
	"fmt"
	"image/color"
	"strings"
	"sync/atomic"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Context is an immutable-by-convention set of style parameters. The zero
// value is not useful; obtain one from New, Default or FromMap.
type Context struct {
	// Font sizes in points.
	TitleSize float64
	LabelSize float64
	TickSize  float64

	// LineWidth is the default trace width in points.
	LineWidth float64

	// Palette is the trace color cycle as color strings (hex or named).
	Palette []string

	// Grid draws panel grid lines behind the data.
	Grid bool

	// FaceColor is the panel background color string.
	FaceColor string

	// Extra carries style keys this package does not interpret; they are
	// recorded and round-tripped untouched so surfaces can consume them.
	Extra map[string]any
}

// defaultPalette mirrors the usual ten-color qualitative cycle.
var defaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// New returns a Context with the package defaults.
func New() *Context {
	return &Context{
		TitleSize: 12,
		LabelSize: 10,
		TickSize:  8,
		LineWidth: 1.5,
		Palette:   append([]string(nil), defaultPalette...),
		FaceColor: "white",
	}
}

var defaultCtx atomic.Pointer[Context]

func init() {
	defaultCtx.Store(New())
}

// Default returns the process-wide default style context.
func Default() *Context {
	return defaultCtx.Load()
}

// SetDefault replaces the process-wide default style context.
// Passing nil restores the package defaults.
// Safe for concurrent use, but intended to be called once before a batch
// of recordings.
func SetDefault(c *Context) {
	if c == nil {
		c = New()
	}
	defaultCtx.Store(c)
}

// Color returns the i-th palette color, cycling past the end.
func (c *Context) Color(i int) color.Color {
	if len(c.Palette) == 0 {
		return color.Black
	}
	col, err := ParseColor(c.Palette[i%len(c.Palette)])
	if err != nil {
		return color.Black
	}
	return col
}

// Map flattens the context into the form recorded in a figure record.
func (c *Context) Map() map[string]any {
	m := map[string]any{
		"title_size": c.TitleSize,
		"label_size": c.LabelSize,
		"tick_size":  c.TickSize,
		"line_width": c.LineWidth,
		"grid":       c.Grid,
		"face_color": c.FaceColor,
	}
	if len(c.Palette) > 0 {
		palette := make([]any, len(c.Palette))
		for i, p := range c.Palette {
			palette[i] = p
		}
		m["palette"] = palette
	}
	for k, v := range c.Extra {
		m[k] = v
	}
	return m
}

// FromMap rebuilds a Context from its recorded form. Unknown keys land in
// Extra. A nil map yields the package defaults.
func FromMap(m map[string]any) *Context {
	c := New()
	if m == nil {
		return c
	}
	c.Merge(m)
	return c
}

// Merge applies style overrides onto the context in place. Recognized keys
// update typed fields; everything else accumulates in Extra.
func (c *Context) Merge(m map[string]any) {
	for k, v := range m {
		switch k {
		case "title_size":
			if f, ok := toFloat(v); ok {
				c.TitleSize = f
			}
		case "label_size":
			if f, ok := toFloat(v); ok {
				c.LabelSize = f
			}
		case "tick_size":
			if f, ok := toFloat(v); ok {
				c.TickSize = f
			}
		case "line_width":
			if f, ok := toFloat(v); ok {
				c.LineWidth = f
			}
		case "grid":
			if b, ok := v.(bool); ok {
				c.Grid = b
			}
		case "face_color":
			if s, ok := v.(string); ok {
				c.FaceColor = s
			}
		case "palette":
			c.Palette = toStrings(v)
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]any)
			}
			c.Extra[k] = v
		}
	}
}

// Clone returns a deep copy of the context.
func (c *Context) Clone() *Context {
	out := *c
	out.Palette = append([]string(nil), c.Palette...)
	if c.Extra != nil {
		out.Extra = make(map[string]any, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, el := range s {
			if str, ok := el.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// namedColors maps the color names accepted in call kwargs and style keys.
// The single-letter aliases follow the usual plotting shorthand.
var namedColors = map[string]color.RGBA{
	"b": {0, 0, 255, 255}, "blue": {0, 0, 255, 255},
	"g": {0, 128, 0, 255}, "green": {0, 128, 0, 255},
	"r": {255, 0, 0, 255}, "red": {255, 0, 0, 255},
	"c": {0, 191, 191, 255}, "cyan": {0, 255, 255, 255},
	"m": {191, 0, 191, 255}, "magenta": {255, 0, 255, 255},
	"y": {191, 191, 0, 255}, "yellow": {255, 255, 0, 255},
	"k": {0, 0, 0, 255}, "black": {0, 0, 0, 255},
	"w": {255, 255, 255, 255}, "white": {255, 255, 255, 255},
	"gray": {128, 128, 128, 255}, "grey": {128, 128, 128, 255},
	"orange": {255, 165, 0, 255}, "purple": {128, 0, 128, 255},
	"brown": {165, 42, 42, 255}, "pink": {255, 192, 203, 255},
	"olive": {128, 128, 0, 255}, "navy": {0, 0, 128, 255},
	"tab:blue": {31, 119, 180, 255}, "tab:orange": {255, 127, 14, 255},
	"tab:green": {44, 160, 44, 255}, "tab:red": {214, 39, 40, 255},
	"tab:purple": {148, 103, 189, 255}, "tab:brown": {140, 86, 75, 255},
	"tab:pink": {227, 119, 194, 255}, "tab:gray": {127, 127, 127, 255},
	"tab:olive": {188, 189, 34, 255}, "tab:cyan": {23, 190, 207, 255},
}

// ParseColor resolves a color string: "#rrggbb" hex via go-colorful, or a
// named color from the built-in table.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("style: bad hex color %q: %w", s, err)
		}
		return c, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("style: unknown color %q", s)
}

// Gradient interpolates between two color strings in Lab space, t in [0,1].
// It is the colormap primitive used for heatmap style surfaces.
func Gradient(from, to string, t float64) color.Color {
	a, errA := ParseColor(from)
	b, errB := ParseColor(to)
	if errA != nil || errB != nil {
		return color.Black
	}
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return ca.BlendLab(cb, t).Clamped()
}
