package record

import (
	"sort"
	"strconv"
)

// Kind classifies an operation as a plot call or a decoration.
// Classification is fixed by operation name, never by caller choice.
type Kind uint8

const (
	// KindPlot marks operations that draw data.
	KindPlot Kind = iota
	// KindDecoration marks operations that annotate a panel (labels,
	// legends, axis configuration). Replay can skip all of these.
	KindDecoration
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if k == KindDecoration {
		return "decoration"
	}
	return "plot"
}

// OpSpec describes one supported operation: how its positional arguments
// are named, which keyword arguments have documented defaults, how it is
// classified, and whether it participates in cross-call references.
//
// The table below is the explicit dispatch surface of the recorder; there
// is no reflective interception anywhere.
type OpSpec struct {
	Name     string
	Kind     Kind
	ArgNames []string

	// Defaults maps keyword argument names to their documented default.
	// A recorded kwarg equal to its default is dropped. Only scalar
	// defaults participate; array-valued kwargs are never compared.
	Defaults map[string]any

	// Referenceable operations produce a result later calls may need.
	Referenceable bool

	// Referencing operations accept a prior result handle as an argument.
	Referencing bool

	// Special operations cannot be replayed by the generic dispatcher and
	// get a dedicated replay routine.
	Special bool
}

// artistDefaults are shared by every drawing operation.
var artistDefaults = map[string]any{
	"alpha":   nil,
	"label":   "",
	"visible": true,
	"zorder":  nil,
}

func defaults(extra map[string]any) map[string]any {
	m := make(map[string]any, len(artistDefaults)+len(extra))
	for k, v := range artistDefaults {
		m[k] = v
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// ops is the fixed set of supported operations.
var ops = map[string]OpSpec{
	// Plot calls.
	"plot": {
		Name: "plot", Kind: KindPlot,
		ArgNames: []string{"x", "y", "fmt"},
		Defaults: defaults(map[string]any{
			"color": nil, "linewidth": nil, "linestyle": "-", "marker": "",
		}),
	},
	"scatter": {
		Name: "scatter", Kind: KindPlot,
		ArgNames: []string{"x", "y", "s", "c"},
		Defaults: defaults(map[string]any{
			"s": 36.0, "marker": "o", "color": nil, "edgecolors": nil,
		}),
	},
	"bar": {
		Name: "bar", Kind: KindPlot,
		ArgNames: []string{"x", "height", "width", "bottom"},
		Defaults: defaults(map[string]any{
			"width": 0.8, "color": nil, "align": "center",
		}),
	},
	"barh": {
		Name: "barh", Kind: KindPlot,
		ArgNames: []string{"y", "width", "height", "left"},
		Defaults: defaults(map[string]any{
			"height": 0.8, "color": nil, "align": "center",
		}),
	},
	"hist": {
		Name: "hist", Kind: KindPlot,
		ArgNames: []string{"x", "bins"},
		Defaults: defaults(map[string]any{
			"bins": 10, "density": false, "color": nil, "cumulative": false,
		}),
	},
	"step": {
		Name: "step", Kind: KindPlot,
		ArgNames: []string{"x", "y"},
		Defaults: defaults(map[string]any{
			"where": "pre", "color": nil, "linewidth": nil,
		}),
	},
	"stem": {
		Name: "stem", Kind: KindPlot,
		ArgNames: []string{"x", "y"},
		Defaults: defaults(map[string]any{
			"linefmt": nil, "markerfmt": nil, "basefmt": nil,
		}),
	},
	"errorbar": {
		Name: "errorbar", Kind: KindPlot,
		ArgNames: []string{"x", "y", "yerr", "xerr"},
		Defaults: defaults(map[string]any{
			"fmt": "", "color": nil, "ecolor": nil, "capsize": nil,
		}),
	},
	"fill_between": {
		Name: "fill_between", Kind: KindPlot,
		ArgNames: []string{"x", "y1", "y2"},
		Defaults: defaults(map[string]any{
			"color": nil, "interpolate": false,
		}),
	},
	"imshow": {
		Name: "imshow", Kind: KindPlot,
		ArgNames: []string{"X"},
		Defaults: defaults(map[string]any{
			"cmap": nil, "vmin": nil, "vmax": nil, "origin": nil,
			"interpolation": nil, "aspect": nil,
		}),
	},
	"contour": {
		Name: "contour", Kind: KindPlot,
		ArgNames: []string{"X", "Y", "Z", "levels"},
		Defaults: defaults(map[string]any{
			"levels": nil, "cmap": nil, "colors": nil, "linewidths": nil,
		}),
		Referenceable: true,
	},
	"contourf": {
		Name: "contourf", Kind: KindPlot,
		ArgNames: []string{"X", "Y", "Z", "levels"},
		Defaults: defaults(map[string]any{
			"levels": nil, "cmap": nil, "colors": nil,
		}),
		Referenceable: true,
	},
	"clabel": {
		Name: "clabel", Kind: KindPlot,
		ArgNames: []string{"cs"},
		Defaults: defaults(map[string]any{
			"inline": true, "fontsize": nil, "fmt": nil,
		}),
		Referencing: true,
	},
	"boxplot": {
		Name: "boxplot", Kind: KindPlot,
		ArgNames: []string{"x"},
		Defaults: defaults(map[string]any{
			"notch": false, "vert": true, "widths": nil, "positions": nil,
			"showfliers": true,
		}),
		Special: true,
	},
	"violinplot": {
		Name: "violinplot", Kind: KindPlot,
		ArgNames: []string{"dataset"},
		Defaults: defaults(map[string]any{
			"positions": nil, "widths": 0.5, "showmeans": false,
			"showmedians": false, "showextrema": true,
		}),
		Special: true,
	},
	"swarmplot": {
		Name: "swarmplot", Kind: KindPlot,
		ArgNames: []string{"data"},
		Defaults: defaults(map[string]any{
			"size": 5.0, "color": nil, "positions": nil,
		}),
		Special: true,
	},

	// Decorations.
	"set_xlabel": {
		Name: "set_xlabel", Kind: KindDecoration,
		ArgNames: []string{"xlabel"},
		Defaults: map[string]any{"fontsize": nil, "labelpad": nil, "loc": nil},
	},
	"set_ylabel": {
		Name: "set_ylabel", Kind: KindDecoration,
		ArgNames: []string{"ylabel"},
		Defaults: map[string]any{"fontsize": nil, "labelpad": nil, "loc": nil},
	},
	"set_title": {
		Name: "set_title", Kind: KindDecoration,
		ArgNames: []string{"label"},
		Defaults: map[string]any{"fontsize": nil, "loc": "center", "pad": nil},
	},
	"set_xlim": {
		Name: "set_xlim", Kind: KindDecoration,
		ArgNames: []string{"left", "right"},
		Defaults: map[string]any{},
	},
	"set_ylim": {
		Name: "set_ylim", Kind: KindDecoration,
		ArgNames: []string{"bottom", "top"},
		Defaults: map[string]any{},
	},
	"set_xscale": {
		Name: "set_xscale", Kind: KindDecoration,
		ArgNames: []string{"value"},
		Defaults: map[string]any{},
	},
	"set_yscale": {
		Name: "set_yscale", Kind: KindDecoration,
		ArgNames: []string{"value"},
		Defaults: map[string]any{},
	},
	"legend": {
		Name: "legend", Kind: KindDecoration,
		ArgNames: nil,
		Defaults: map[string]any{
			"loc": "best", "fontsize": nil, "frameon": true, "ncol": 1,
			"title": nil,
		},
	},
	"grid": {
		Name: "grid", Kind: KindDecoration,
		ArgNames: []string{"visible"},
		Defaults: map[string]any{
			"which": "major", "axis": "both", "color": nil, "alpha": nil,
		},
	},
	"axhline": {
		Name: "axhline", Kind: KindDecoration,
		ArgNames: []string{"y"},
		Defaults: defaults(map[string]any{
			"color": nil, "linestyle": "-", "linewidth": nil,
			"xmin": 0.0, "xmax": 1.0,
		}),
	},
	"axvline": {
		Name: "axvline", Kind: KindDecoration,
		ArgNames: []string{"x"},
		Defaults: defaults(map[string]any{
			"color": nil, "linestyle": "-", "linewidth": nil,
			"ymin": 0.0, "ymax": 1.0,
		}),
	},
	"axhspan": {
		Name: "axhspan", Kind: KindDecoration,
		ArgNames: []string{"ymin", "ymax"},
		Defaults: defaults(map[string]any{"color": nil}),
	},
	"axvspan": {
		Name: "axvspan", Kind: KindDecoration,
		ArgNames: []string{"xmin", "xmax"},
		Defaults: defaults(map[string]any{"color": nil}),
	},
	"text": {
		Name: "text", Kind: KindDecoration,
		ArgNames: []string{"x", "y", "s"},
		Defaults: defaults(map[string]any{
			"fontsize": nil, "color": nil, "ha": "left", "va": "baseline",
			"rotation": 0.0, "transform": "data",
		}),
	},
	"annotate": {
		Name: "annotate", Kind: KindDecoration,
		ArgNames: []string{"text", "xy", "xytext"},
		Defaults: defaults(map[string]any{
			"fontsize": nil, "color": nil, "arrowprops": nil,
		}),
	},
}

// Op returns the spec for an operation name.
func Op(name string) (OpSpec, bool) {
	spec, ok := ops[name]
	return spec, ok
}

// Ops returns all supported operation names, sorted.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsDecoration reports whether name is classified as a decoration.
// Unknown names classify as plot calls, matching the recorder's fallback.
func IsDecoration(name string) bool {
	spec, ok := ops[name]
	return ok && spec.Kind == KindDecoration
}

// argName returns the conventional name of positional argument i for the
// operation, falling back to generic arg0, arg1, ...
func argName(op string, i int) string {
	if spec, ok := ops[op]; ok && i < len(spec.ArgNames) {
		return spec.ArgNames[i]
	}
	return "arg" + strconv.Itoa(i)
}
