package figrec_test

import (
	"os"
	"path/filepath"
	"testing"

	figrec "github.com/figdraw/figrec"
	"github.com/figdraw/figrec/record"
	_ "github.com/figdraw/figrec/surface/gonumplot"
)

func TestSubplotsGrid(t *testing.T) {
	fig, err := figrec.Subplots(2, 3, figrec.WithSize(9, 6), figrec.WithDPI(150))
	if err != nil {
		t.Fatalf("Subplots: %v", err)
	}
	rows, cols := fig.Grid()
	if rows != 2 || cols != 3 {
		t.Fatalf("grid = %dx%d, want 2x3", rows, cols)
	}
	rec := fig.Record()
	if rec.FigSize != [2]float64{9, 6} {
		t.Errorf("figsize = %v, want [9 6]", rec.FigSize)
	}
	if rec.DPI != 150 {
		t.Errorf("dpi = %v, want 150", rec.DPI)
	}
	if r, c := rec.GridShape(); r != 2 || c != 3 {
		t.Errorf("recorded grid = %dx%d, want 2x3", r, c)
	}
	if fig.Axes(2, 0) != nil {
		t.Error("out-of-range Axes should be nil")
	}
}

func TestSubplotsInvalidGrid(t *testing.T) {
	if _, err := figrec.Subplots(0, 2); err == nil {
		t.Fatal("expected error for zero rows")
	}
}

func TestPlotLiftsFormat(t *testing.T) {
	fig, _ := figrec.Subplots(1, 1)
	ax := fig.Axes(0, 0)
	if err := ax.Plot([]float64{1, 2}, []float64{3, 4}, figrec.Kw{"fmt": "ro--", "label": "run"}); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	call := fig.Record().FindCall("plot_000")
	if call == nil {
		t.Fatal("plot_000 not recorded")
	}
	if got := len(call.Args); got != 3 {
		t.Fatalf("len(args) = %d, want 3", got)
	}
	if call.Args[2].Data != "ro--" {
		t.Errorf("fmt arg = %v, want ro--", call.Args[2].Data)
	}
	if _, ok := call.Kwargs["fmt"]; ok {
		t.Error("fmt should not remain in kwargs")
	}
	if call.Kwargs["label"] != "run" {
		t.Errorf("label = %v, want run", call.Kwargs["label"])
	}
}

func TestContourReference(t *testing.T) {
	fig, _ := figrec.Subplots(1, 1)
	ax := fig.Axes(0, 0)
	z := [][]float64{{0, 1}, {1, 2}}
	cs, err := ax.Contour(z, nil)
	if err != nil {
		t.Fatalf("Contour: %v", err)
	}
	if err := ax.CLabel(cs, figrec.Kw{"fontsize": 8}); err != nil {
		t.Fatalf("CLabel: %v", err)
	}
	call := fig.Record().FindCall("clabel_000")
	if call == nil {
		t.Fatal("clabel_000 not recorded")
	}
	ref, ok := record.AsRef(call.Args[0].Data)
	if !ok {
		t.Fatalf("clabel arg = %#v, want reference", call.Args[0].Data)
	}
	if ref.ID != "contour_000" {
		t.Errorf("reference = %q, want contour_000", ref.ID)
	}
}

func TestErrorBarPositional(t *testing.T) {
	fig, _ := figrec.Subplots(1, 1)
	ax := fig.Axes(0, 0)
	x := []float64{1, 2, 3}
	if err := ax.ErrorBar(x, x, []float64{0.1, 0.1, 0.1}, nil, nil); err != nil {
		t.Fatalf("ErrorBar: %v", err)
	}
	call := fig.Record().FindCall("errorbar_000")
	if call == nil {
		t.Fatal("errorbar_000 not recorded")
	}
	if got := len(call.Args); got != 3 {
		t.Fatalf("len(args) = %d, want 3", got)
	}
	if call.Args[2].Name != "yerr" {
		t.Errorf("arg 2 name = %q, want yerr", call.Args[2].Name)
	}
}

func TestDecorationClassification(t *testing.T) {
	fig, _ := figrec.Subplots(1, 1)
	ax := fig.Axes(0, 0)
	ax.Plot([]float64{1, 2}, []float64{3, 4}, nil)
	ax.SetTitle("trends", nil)
	ax.SetXLim(0, 5)
	ax.Legend(nil)

	rec := fig.Record().AxesAt(record.Position{})
	if got := len(rec.Calls); got != 1 {
		t.Errorf("plot calls = %d, want 1", got)
	}
	if got := len(rec.Decorations); got != 3 {
		t.Errorf("decorations = %d, want 3", got)
	}
}

func TestFigureText(t *testing.T) {
	fig, _ := figrec.Subplots(2, 2)
	fig.SupTitle("Overview", figrec.Kw{"fontsize": 16})
	fig.SupXLabel("time (s)", nil)
	fig.PanelLabels(nil, record.PanelLabels{FontWeight: "bold"})
	fig.SetCaption("Four panels of the same run.")
	fig.SetMetadata("experiment", "ex-42")

	rec := fig.Record()
	if rec.SupTitle == nil || rec.SupTitle.Text != "Overview" {
		t.Error("suptitle not recorded")
	}
	if rec.SupXLabel == nil || rec.SupXLabel.Text != "time (s)" {
		t.Error("supxlabel not recorded")
	}
	if rec.PanelLabels == nil || rec.PanelLabels.FontWeight != "bold" {
		t.Error("panel labels not recorded")
	}
	if rec.Metadata["experiment"] != "ex-42" {
		t.Error("metadata not recorded")
	}
}

func TestSaveRecipeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fig, _ := figrec.Subplots(1, 2)
	fig.Axes(0, 0).Plot([]float64{1, 2, 3}, []float64{2, 4, 6}, figrec.Kw{"label": "double"})
	fig.Axes(0, 1).SetVisible(false)

	path := filepath.Join(dir, "fig.yaml")
	if err := fig.SaveRecipe(path); err != nil {
		t.Fatalf("SaveRecipe: %v", err)
	}
	loaded, err := figrec.LoadRecipe(path)
	if err != nil {
		t.Fatalf("LoadRecipe: %v", err)
	}
	if loaded.FindCall("plot_000") == nil {
		t.Error("plot_000 missing after round trip")
	}
	ax := loaded.AxesAt(record.Position{Col: 1})
	if ax.IsVisible() {
		t.Error("hidden panel should stay hidden after round trip")
	}
}

func TestSavePNGWritesImageAndRecipe(t *testing.T) {
	dir := t.TempDir()
	fig, _ := figrec.Subplots(1, 1, figrec.WithSize(3, 2))
	fig.Axes(0, 0).Plot([]float64{0, 1, 2}, []float64{0, 1, 4}, nil)

	path := filepath.Join(dir, "out.png")
	if err := fig.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("png missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.yaml")); err != nil {
		t.Errorf("recipe missing: %v", err)
	}
	loaded, err := figrec.LoadRecipe(filepath.Join(dir, "out.yaml"))
	if err != nil {
		t.Fatalf("LoadRecipe: %v", err)
	}
	if loaded.Backend != "gonumplot" {
		t.Errorf("recorded backend = %q, want gonumplot", loaded.Backend)
	}

	res, err := figrec.Validate(filepath.Join(dir, "out.yaml"), path)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Errorf("reproduction should match its own render: %s", res.Message)
	}
}

func TestReproduceWarnings(t *testing.T) {
	fig, _ := figrec.Subplots(1, 1)
	fig.Axes(0, 0).Plot([]float64{1, 2}, []float64{3, 4}, nil)

	rec := fig.Record()
	ax := rec.AxesAt(record.Position{})
	ax.Calls = append(ax.Calls, &record.CallRecord{
		ID:       "clabel_000",
		Function: "clabel",
		Args: []record.Arg{
			{Name: "cs", Data: record.Ref{ID: "contour_999"}},
		},
	})

	rep, err := figrec.Reproduce(rec)
	if err != nil {
		t.Fatalf("Reproduce: %v", err)
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(rep.Warnings))
	}
	if rep.Warnings[0].CallID != "clabel_000" {
		t.Errorf("warning call = %q, want clabel_000", rep.Warnings[0].CallID)
	}
}
