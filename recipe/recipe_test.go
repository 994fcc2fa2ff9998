package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/figdraw/figrec/codec"
	"github.com/figdraw/figrec/record"
)

func recordFigure(t *testing.T, x []float64) *record.FigureRecord {
	t.Helper()
	r := record.NewRecorder(6, 4, 100)
	if _, err := r.RecordCall(record.Position{Row: 0, Col: 0}, "plot",
		[]any{x, x}, map[string]any{"color": "red"}); err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	if _, err := r.RecordCall(record.Position{Row: 0, Col: 0}, "set_title",
		[]any{"demo"}, nil); err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	return r.Figure()
}

func TestSaveLoadInline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	x := []float64{1, 2, 3}
	if err := Save(recordFigure(t, x), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fig, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ax, ok := fig.Axes["ax_0_0"]
	if !ok {
		t.Fatal("panel ax_0_0 missing after load")
	}
	if len(ax.Calls) != 1 || len(ax.Decorations) != 1 {
		t.Fatalf("calls/decorations = %d/%d, want 1/1", len(ax.Calls), len(ax.Decorations))
	}
	call := ax.Calls[0]
	if call.ID != "plot_000" || call.Function != "plot" {
		t.Errorf("call = %s %s", call.ID, call.Function)
	}
	arr := call.Args[0].Resolve()
	if arr == nil || arr.Len() != 3 || arr.Values[2] != 3 {
		t.Errorf("resolved x = %v", arr)
	}
	if got := call.Kwargs["color"]; got != "red" {
		t.Errorf("kwargs color = %v, want red", got)
	}
	if ax.Row != 0 || ax.Col != 0 {
		t.Errorf("panel position = (%d,%d)", ax.Row, ax.Col)
	}
}

func TestSaveLargeArraySidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	x := make([]float64, codec.InlineThreshold+50)
	for i := range x {
		x[i] = float64(i)
	}
	if err := Save(recordFigure(t, x), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sidecar := filepath.Join(dir, "fig_data", "plot_000_x.csv")
	if _, err := os.Stat(sidecar); err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}

	fig, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	arg := fig.Axes["ax_0_0"].Calls[0].Arg("x")
	if arg == nil {
		t.Fatal("arg x missing")
	}
	if got, _ := arg.Data.(string); got != "fig_data/plot_000_x.csv" {
		t.Errorf("arg data = %v, want relative sidecar path", arg.Data)
	}
	arr := arg.Resolve()
	if arr == nil || arr.Len() != len(x) || arr.Values[120] != 120 {
		t.Errorf("resolved sidecar array = %v", arr)
	}
}

func TestSaveNPZFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	x := make([]float64, codec.InlineThreshold+1)
	if err := Save(recordFigure(t, x), path, WithFormat(codec.FormatNPZ)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fig_data", "plot_000_x.npz")); err != nil {
		t.Fatalf("npz sidecar not written: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestSaveInlineAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	x := make([]float64, codec.InlineThreshold*3)
	if err := Save(recordFigure(t, x), path, WithInlineData()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fig_data")); !errors.Is(err, os.ErrNotExist) {
		t.Error("sidecar directory created despite inline-all")
	}
	fig, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	arr := fig.Axes["ax_0_0"].Calls[0].Arg("x").Resolve()
	if arr == nil || arr.Len() != len(x) {
		t.Errorf("inline-all array = %v", arr)
	}
}

func TestJaggedSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	groups := [][]float64{make([]float64, 90), make([]float64, 60)}
	for i := range groups[0] {
		groups[0][i] = float64(i)
	}
	for i := range groups[1] {
		groups[1][i] = -float64(i)
	}
	r := record.NewRecorder(6, 4, 100)
	if _, err := r.RecordCall(record.Position{Row: 0, Col: 0}, "boxplot",
		[]any{groups}, nil); err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	if err := Save(r.Figure(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fig, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	arg := fig.Axes["ax_0_0"].Calls[0].Arg("x")
	if got := arg.GroupSizes; len(got) != 2 || got[0] != 90 || got[1] != 60 {
		t.Fatalf("GroupSizes = %v, want [90 60]", got)
	}
	back, ok := arg.Groups()
	if !ok || len(back) != 2 {
		t.Fatalf("Groups = %v, %v", back, ok)
	}
	if len(back[0]) != 90 || len(back[1]) != 60 {
		t.Errorf("group lengths = %d, %d", len(back[0]), len(back[1]))
	}
	if back[1][59] != -59 {
		t.Errorf("group value = %v, want -59", back[1][59])
	}
}

func TestLoadMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	x := make([]float64, codec.InlineThreshold+1)
	if err := Save(recordFigure(t, x), path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.RemoveAll(filepath.Join(dir, "fig_data")); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrMissingSidecar) {
		t.Errorf("Load error = %v, want ErrMissingSidecar", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("calls: [not, a, recipe]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrMalformed) {
		t.Errorf("Load error = %v, want ErrMalformed", err)
	}
}

func TestLoadUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")
	fig := recordFigure(t, []float64{1})
	fig.Version = "2.0"
	if err := Save(fig, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Load error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestLoadViaImagePath(t *testing.T) {
	dir := t.TempDir()
	if err := Save(recordFigure(t, []float64{1, 2}), filepath.Join(dir, "fig.png")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fig.yaml")); err != nil {
		t.Fatalf("recipe not written next to image path: %v", err)
	}
	fig, err := Load(filepath.Join(dir, "fig.png"))
	if err != nil {
		t.Fatalf("Load via image path: %v", err)
	}
	if fig.Axes["ax_0_0"] == nil {
		t.Error("panel missing after image-path load")
	}
}

func TestOverridesApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")
	if err := Save(recordFigure(t, []float64{1, 2}), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ov := &Overrides{
		Style: map[string]any{"grid": true},
		Calls: map[string]map[string]any{
			"plot_000": {"color": "blue", "linewidth": 2},
			"ghost_000": {"color": "green"},
		},
	}
	if err := SaveOverrides(ov, path); err != nil {
		t.Fatalf("SaveOverrides: %v", err)
	}

	fig, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := fig.Style["grid"]; got != true {
		t.Errorf("style grid = %v, want true", got)
	}
	call := fig.Axes["ax_0_0"].Calls[0]
	if got := call.Kwargs["color"]; got != "blue" {
		t.Errorf("overridden color = %v, want blue", got)
	}

	// The document on disk keeps its recorded values.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "color: red"; !strings.Contains(string(raw), want) {
		t.Errorf("document on disk lost %q", want)
	}
}

func TestOverridesPath(t *testing.T) {
	if got := OverridesPath("/tmp/fig.yaml"); got != "/tmp/fig.overrides.json" {
		t.Errorf("OverridesPath = %q", got)
	}
}

func TestDocumentLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fig.yaml")

	fig := recordFigure(t, []float64{1, 2, 3})
	fig.Caption = "three points"
	fig.Metadata = map[string]any{"title": "demo"}
	fig.SupTitle = &record.TextRecord{Text: "overview"}
	if err := Save(fig, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, key := range []string{"version", "id", "created", "figure", "axes", "metadata"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("top-level key %q missing", key)
		}
	}
	for _, key := range []string{"figsize", "dpi", "suptitle", "style", "caption"} {
		if _, ok := doc[key]; ok {
			t.Errorf("key %q must not be top-level", key)
		}
	}

	figBlock, ok := doc["figure"].(map[string]any)
	if !ok {
		t.Fatalf("figure block = %T, want mapping", doc["figure"])
	}
	if _, ok := figBlock["figsize"]; !ok {
		t.Error("figure.figsize missing")
	}
	if got := figBlock["dpi"]; got != 100 {
		t.Errorf("figure.dpi = %v, want 100", got)
	}
	if _, ok := figBlock["suptitle"]; !ok {
		t.Error("figure.suptitle missing")
	}

	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata block = %T, want mapping", doc["metadata"])
	}
	if got := meta["caption"]; got != "three points" {
		t.Errorf("metadata.caption = %v", got)
	}
	if got := meta["title"]; got != "demo" {
		t.Errorf("metadata.title = %v", got)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Caption != "three points" {
		t.Errorf("loaded caption = %q", loaded.Caption)
	}
	if loaded.Metadata["title"] != "demo" {
		t.Errorf("loaded metadata = %v", loaded.Metadata)
	}
	if loaded.SupTitle == nil || loaded.SupTitle.Text != "overview" {
		t.Error("loaded suptitle missing")
	}
	if loaded.FigSize != [2]float64{6, 4} || loaded.DPI != 100 {
		t.Errorf("loaded geometry = %v @ %v", loaded.FigSize, loaded.DPI)
	}
}
