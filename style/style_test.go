package style

import (
	"image/color"
	"testing"
)

func TestMapRoundTrip(t *testing.T) {
	c := New()
	c.TitleSize = 14
	c.Grid = true
	c.Palette = []string{"#112233", "red"}
	c.Extra = map[string]any{"spine_width": 0.8}

	got := FromMap(c.Map())
	if got.TitleSize != 14 {
		t.Errorf("TitleSize = %v, want 14", got.TitleSize)
	}
	if !got.Grid {
		t.Error("Grid not preserved")
	}
	if len(got.Palette) != 2 || got.Palette[0] != "#112233" {
		t.Errorf("Palette = %v, want [#112233 red]", got.Palette)
	}
	if got.Extra["spine_width"] != 0.8 {
		t.Errorf("Extra[spine_width] = %v, want 0.8", got.Extra["spine_width"])
	}
}

func TestMergeUnknownKeysToExtra(t *testing.T) {
	c := New()
	c.Merge(map[string]any{"line_width": 2.0, "custom_key": "v"})
	if c.LineWidth != 2.0 {
		t.Errorf("LineWidth = %v, want 2.0", c.LineWidth)
	}
	if c.Extra["custom_key"] != "v" {
		t.Errorf("Extra[custom_key] = %v, want v", c.Extra["custom_key"])
	}
}

func TestDefaultSwappable(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	custom := New()
	custom.LineWidth = 3
	SetDefault(custom)
	if Default().LineWidth != 3 {
		t.Errorf("Default().LineWidth = %v, want 3", Default().LineWidth)
	}

	SetDefault(nil)
	if Default().LineWidth != New().LineWidth {
		t.Error("SetDefault(nil) should restore package defaults")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, false},
		{"red", color.RGBA{255, 0, 0, 255}, false},
		{"K", color.RGBA{0, 0, 0, 255}, false},
		{"not-a-color", color.RGBA{}, true},
		{"#zzz", color.RGBA{}, true},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		r, g, b, _ := c.RGBA()
		wr, wg, wb, _ := tt.want.RGBA()
		if r != wr || g != wg || b != wb {
			t.Errorf("ParseColor(%q) = %v,%v,%v want %v,%v,%v", tt.in, r>>8, g>>8, b>>8, wr>>8, wg>>8, wb>>8)
		}
	}
}

func TestColorCycles(t *testing.T) {
	c := New()
	n := len(c.Palette)
	if got, want := c.Color(0), c.Color(n); got != want {
		t.Errorf("Color(0) != Color(%d): palette should cycle", n)
	}
}

func TestGradientEndpoints(t *testing.T) {
	from := Gradient("black", "white", 0)
	r, g, b, _ := from.RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("Gradient(t=0) = %v,%v,%v, want black", r, g, b)
	}
	to := Gradient("black", "white", 1)
	r, g, b, _ = to.RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("Gradient(t=1) = %v,%v,%v, want white", r>>8, g>>8, b>>8)
	}
}
