package gonumplot

import (
	"fmt"

	"gonum.org/v1/plot/plotter"

	"github.com/figdraw/figrec/codec"
)

// asVector coerces an argument value to a flat float64 slice.
func asVector(v any) ([]float64, bool) {
	switch t := v.(type) {
	case *codec.Array:
		if t == nil || t.IsMatrix() {
			return nil, false
		}
		return t.Values, true
	case []float64:
		return t, true
	case []int:
		out := make([]float64, len(t))
		for i, n := range t {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		arr := codec.FromInline(t, codec.Float64)
		if arr == nil || arr.IsMatrix() {
			return nil, false
		}
		return arr.Values, true
	case float64:
		return []float64{t}, true
	case int:
		return []float64{float64(t)}, true
	}
	if arr := codec.FromInline(v, codec.Float64); arr != nil && !arr.IsMatrix() {
		return arr.Values, true
	}
	return nil, false
}

// asMatrix coerces an argument value to a codec matrix.
func asMatrix(v any) (*codec.Array, bool) {
	switch t := v.(type) {
	case *codec.Array:
		return t, t != nil && t.IsMatrix()
	case [][]float64:
		arr, err := codec.NewMatrix(t)
		if err != nil {
			return nil, false
		}
		return arr, true
	}
	if arr := codec.FromInline(v, codec.Float64); arr != nil && arr.IsMatrix() {
		return arr, true
	}
	return nil, false
}

// asGroups coerces an argument to a list of sample groups. A flat vector
// becomes a single group.
func asGroups(v any) ([][]float64, bool) {
	switch t := v.(type) {
	case [][]float64:
		return t, len(t) > 0
	case []any:
		groups := make([][]float64, 0, len(t))
		for _, el := range t {
			g, ok := asVector(el)
			if !ok {
				return nil, false
			}
			groups = append(groups, g)
		}
		return groups, len(groups) > 0
	}
	if g, ok := asVector(v); ok {
		return [][]float64{g}, true
	}
	if m, ok := asMatrix(v); ok {
		groups := make([][]float64, m.Cols)
		for col := 0; col < m.Cols; col++ {
			g := make([]float64, m.Rows)
			for row := 0; row < m.Rows; row++ {
				g[row] = m.At(row, col)
			}
			groups[col] = g
		}
		return groups, true
	}
	return nil, false
}

// makeXYs pairs x and y vectors into plotter points.
func makeXYs(x, y []float64) (plotter.XYs, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("gonumplot: x and y lengths differ: %d vs %d", len(x), len(y))
	}
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X = x[i]
		xys[i].Y = y[i]
	}
	return xys, nil
}

// indexXYs pairs a y vector with 0..n-1 x positions.
func indexXYs(y []float64) plotter.XYs {
	xys := make(plotter.XYs, len(y))
	for i, v := range y {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	return xys
}

// kwString reads a string keyword argument.
func kwString(kwargs map[string]any, key, def string) string {
	if v, ok := kwargs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// kwFloat reads a numeric keyword argument.
func kwFloat(kwargs map[string]any, key string, def float64) float64 {
	if v, ok := kwargs[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

// kwBool reads a boolean keyword argument.
func kwBool(kwargs map[string]any, key string, def bool) bool {
	if v, ok := kwargs[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// kwVector reads an array-valued keyword argument.
func kwVector(kwargs map[string]any, key string) ([]float64, bool) {
	v, ok := kwargs[key]
	if !ok || v == nil {
		return nil, false
	}
	return asVector(v)
}

// argAt returns args[i] or nil.
func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// floatArg coerces a positional argument to a float64.
func floatArg(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// stringArg coerces a positional argument to a string.
func stringArg(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
