// Package figrec records figures as executable recipes.
//
// A figure built through this package is captured as a sequence of named
// drawing calls per panel, together with the data each call consumed. The
// capture is saved as a YAML recipe document with sidecar data files,
// reloaded later, replayed onto a pluggable drawing surface and validated
// pixel by pixel against a reference rendering.
//
// Basic usage:
//
//	fig, err := figrec.Subplots(1, 2)
//	ax := fig.Axes(0, 0)
//	ax.Plot(x, y, figrec.Kw{"color": "red", "label": "signal"})
//	ax.SetTitle("signal", nil)
//	fig.SaveRecipe("out/fig.yaml")
//
// Rendering requires a registered surface backend; import one for side
// effects:
//
//	import _ "github.com/figdraw/figrec/surface/gonumplot"
//
//	err := fig.SavePNG("out/fig.png")
package figrec
