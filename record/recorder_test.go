package record

import (
	"math"
	"testing"

	"github.com/figdraw/figrec/codec"
	"github.com/figdraw/figrec/surface"
)

func TestRecordCallIDs(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	pos := Position{0, 0}

	ids := []string{}
	for i := 0; i < 3; i++ {
		c, err := r.RecordCall(pos, "plot", []any{[]float64{1, 2}, []float64{3, 4}}, nil)
		if err != nil {
			t.Fatalf("RecordCall: %v", err)
		}
		ids = append(ids, c.ID)
	}
	c, err := r.RecordCall(pos, "scatter", []any{[]float64{1}, []float64{2}}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}

	want := []string{"plot_000", "plot_001", "plot_002"}
	for i, id := range ids {
		if id != want[i] {
			t.Errorf("id[%d] = %q, want %q", i, id, want[i])
		}
	}
	if c.ID != "scatter_000" {
		t.Errorf("scatter id = %q, want scatter_000", c.ID)
	}
}

func TestRecordCallClassification(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	pos := Position{0, 0}

	if _, err := r.RecordCall(pos, "plot", []any{[]float64{1}, []float64{2}}, nil); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if _, err := r.RecordCall(pos, "set_title", []any{"hello"}, nil); err != nil {
		t.Fatalf("set_title: %v", err)
	}

	ax := r.Figure().AxesAt(pos)
	if len(ax.Calls) != 1 || ax.Calls[0].Function != "plot" {
		t.Errorf("Calls = %v, want single plot", ax.Calls)
	}
	if len(ax.Decorations) != 1 || ax.Decorations[0].Function != "set_title" {
		t.Errorf("Decorations = %v, want single set_title", ax.Decorations)
	}
}

func TestRecordCallUnknownOp(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	if _, err := r.RecordCall(Position{0, 0}, "frobnicate", nil, nil); err == nil {
		t.Fatal("unknown op recorded without error")
	}
}

func TestArgNames(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	c, err := r.RecordCall(Position{0, 0}, "scatter",
		[]any{[]float64{1}, []float64{2}, 20.0, "red", "extra"}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	want := []string{"x", "y", "s", "c", "arg4"}
	if len(c.Args) != len(want) {
		t.Fatalf("got %d args, want %d", len(c.Args), len(want))
	}
	for i, name := range want {
		if c.Args[i].Name != name {
			t.Errorf("arg[%d].Name = %q, want %q", i, c.Args[i].Name, name)
		}
	}
}

func TestDefaultFiltering(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	c, err := r.RecordCall(Position{0, 0}, "scatter",
		[]any{[]float64{1}, []float64{2}},
		map[string]any{
			"s":     36,      // matches default 36.0 numerically
			"alpha": 0.5,     // differs from default nil
			"label": "",      // matches default
			"color": "green", // differs
		})
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	if _, ok := c.Kwargs["s"]; ok {
		t.Error("default-valued kwarg s survived filtering")
	}
	if _, ok := c.Kwargs["label"]; ok {
		t.Error("default-valued kwarg label survived filtering")
	}
	if got := c.Kwargs["alpha"]; got != 0.5 {
		t.Errorf("alpha = %v, want 0.5", got)
	}
	if got := c.Kwargs["color"]; got != "green" {
		t.Errorf("color = %v, want green", got)
	}
}

func TestArrayKwargNeverFiltered(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	c, err := r.RecordCall(Position{0, 0}, "hist",
		[]any{[]float64{1, 2, 3}},
		map[string]any{"bins": []float64{0, 1, 2, 3}})
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	bins, ok := c.Kwargs["bins"].([]float64)
	if !ok || len(bins) != 4 {
		t.Fatalf("bins = %#v, want inline 4-element array", c.Kwargs["bins"])
	}
}

func TestSmallArrayInline(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	x := make([]float64, codec.InlineThreshold)
	c, err := r.RecordCall(Position{0, 0}, "plot", []any{x, x}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	if c.Args[0].IsPending() {
		t.Error("threshold-sized array stored as pending, want inline")
	}
	if _, ok := c.Args[0].Data.([]float64); !ok {
		t.Errorf("inline data type = %T, want []float64", c.Args[0].Data)
	}
}

func TestLargeArrayPending(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	x := make([]float64, codec.InlineThreshold+1)
	c, err := r.RecordCall(Position{0, 0}, "plot", []any{x, x}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	a := c.Args[0]
	if !a.IsPending() {
		t.Fatal("oversized array not marked pending")
	}
	if a.Data != PendingData {
		t.Errorf("pending Data = %v, want placeholder", a.Data)
	}
	if a.Array.Len() != codec.InlineThreshold+1 {
		t.Errorf("pending array len = %d, want %d", a.Array.Len(), codec.InlineThreshold+1)
	}
}

func TestJaggedGroups(t *testing.T) {
	r := NewRecorder(6, 4, 100)

	small := [][]float64{{1, 2, 3}, {4, 5}}
	c, err := r.RecordCall(Position{0, 0}, "boxplot", []any{small}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	groups, ok := c.Args[0].Data.([][]float64)
	if !ok {
		t.Fatalf("small jagged data = %T, want [][]float64", c.Args[0].Data)
	}
	if len(groups) != 2 || len(groups[0]) != 3 || len(groups[1]) != 2 {
		t.Errorf("groups = %v, want original lengths preserved", groups)
	}

	big := [][]float64{make([]float64, 80), make([]float64, 70)}
	c, err = r.RecordCall(Position{0, 1}, "boxplot", []any{big}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	a := c.Args[0]
	if !a.IsPending() {
		t.Fatal("large jagged groups not marked pending")
	}
	if got := a.GroupSizes; len(got) != 2 || got[0] != 80 || got[1] != 70 {
		t.Errorf("GroupSizes = %v, want [80 70]", got)
	}
	if !a.Array.IsMatrix() || a.Array.Rows != 80 || a.Array.Cols != 2 {
		t.Errorf("stacked shape = %dx%d, want 80x2", a.Array.Rows, a.Array.Cols)
	}
	if !math.IsNaN(a.Array.At(79, 1)) {
		t.Error("short group not NaN padded")
	}
}

func TestEqualLengthGroups(t *testing.T) {
	r := NewRecorder(6, 4, 100)

	big := make([][]float64, 2)
	for i := range big {
		big[i] = make([]float64, 60)
		for j := range big[i] {
			big[i][j] = float64(i*60 + j)
		}
	}
	c, err := r.RecordCall(Position{0, 0}, "boxplot", []any{big}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	a := c.Args[0]
	if !a.IsPending() {
		t.Fatal("large equal-length groups not marked pending")
	}
	if got := a.GroupSizes; len(got) != 2 || got[0] != 60 || got[1] != 60 {
		t.Errorf("GroupSizes = %v, want [60 60]", got)
	}
	if !a.Array.IsMatrix() || a.Array.Rows != 60 || a.Array.Cols != 2 {
		t.Errorf("stacked shape = %dx%d, want 60x2", a.Array.Rows, a.Array.Cols)
	}

	groups, ok := a.Groups()
	if !ok || len(groups) != 2 {
		t.Fatalf("Groups = %v, %v, want the 2 recorded groups", groups, ok)
	}
	for i := range groups {
		if len(groups[i]) != 60 {
			t.Fatalf("group %d length = %d, want 60", i, len(groups[i]))
		}
		for j, v := range groups[i] {
			if v != big[i][j] {
				t.Fatalf("group[%d][%d] = %v, want %v", i, j, v, big[i][j])
			}
		}
	}
}

func TestResultReference(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	pos := Position{0, 0}

	cs, err := r.RecordCall(pos, "contour", []any{[][]float64{{1, 2}, {3, 4}}}, nil)
	if err != nil {
		t.Fatalf("contour: %v", err)
	}
	handle := surface.NewHandle(cs.ID)
	r.RegisterResult(handle, cs.ID)

	cl, err := r.RecordCall(pos, "clabel", []any{handle}, nil)
	if err != nil {
		t.Fatalf("clabel: %v", err)
	}
	ref, ok := AsRef(cl.Args[0].Data)
	if !ok {
		t.Fatalf("clabel arg = %#v, want reference token", cl.Args[0].Data)
	}
	if ref.ID != "contour_000" {
		t.Errorf("ref.ID = %q, want contour_000", ref.ID)
	}

	// An unregistered handle degrades to its id string.
	stray := surface.NewHandle("stray")
	cl2, err := r.RecordCall(pos, "clabel", []any{stray}, nil)
	if err != nil {
		t.Fatalf("clabel: %v", err)
	}
	if got := cl2.Args[0].Data; got != "stray" {
		t.Errorf("unregistered handle recorded as %v, want id string", got)
	}
}

func TestAsRefDecodedMap(t *testing.T) {
	ref, ok := AsRef(map[string]any{"reference": "contour_001"})
	if !ok || ref.ID != "contour_001" {
		t.Errorf("AsRef = %v, %v", ref, ok)
	}
	if _, ok := AsRef(map[string]any{"reference": "x", "other": 1}); ok {
		t.Error("multi-key map accepted as reference")
	}
	if _, ok := AsRef("contour_001"); ok {
		t.Error("plain string accepted as reference")
	}
}

func TestPositionKey(t *testing.T) {
	p := Position{Row: 2, Col: 3}
	if got := p.Key(); got != "ax_2_3" {
		t.Errorf("Key = %q, want ax_2_3", got)
	}
	back, ok := ParseKey("ax_2_3")
	if !ok || back != p {
		t.Errorf("ParseKey = %v, %v", back, ok)
	}
	if _, ok := ParseKey("panel_2_3"); ok {
		t.Error("ParseKey accepted foreign key")
	}
}

func TestGridShape(t *testing.T) {
	f := NewFigureRecord(6, 4, 100)
	if r, c := f.GridShape(); r != 1 || c != 1 {
		t.Errorf("empty GridShape = %dx%d, want 1x1", r, c)
	}
	f.AxesAt(Position{1, 2})
	f.AxesAt(Position{0, 0})
	if r, c := f.GridShape(); r != 2 || c != 3 {
		t.Errorf("GridShape = %dx%d, want 2x3", r, c)
	}
}

func TestSortedAxesOrder(t *testing.T) {
	f := NewFigureRecord(6, 4, 100)
	f.AxesAt(Position{1, 1})
	f.AxesAt(Position{0, 1})
	f.AxesAt(Position{1, 0})
	f.AxesAt(Position{0, 0})

	got := f.SortedAxes()
	want := []Position{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, ax := range got {
		if ax.Row != want[i].Row || ax.Col != want[i].Col {
			t.Errorf("SortedAxes[%d] = (%d,%d), want %v", i, ax.Row, ax.Col, want[i])
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	if _, err := r.RecordCall(Position{0, 0}, "plot",
		[]any{[]float64{1, 2}, []float64{3, 4}},
		map[string]any{"color": "red"}); err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	orig := r.Figure()

	cp, err := orig.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	cp.Axes["ax_0_0"].Calls[0].Kwargs["color"] = "blue"
	cp.Style = map[string]any{"grid": true}

	if got := orig.Axes["ax_0_0"].Calls[0].Kwargs["color"]; got != "red" {
		t.Errorf("original kwarg mutated through clone: %v", got)
	}
	if orig.Style != nil {
		t.Error("original style mutated through clone")
	}
}

func TestFindCall(t *testing.T) {
	r := NewRecorder(6, 4, 100)
	c, err := r.RecordCall(Position{1, 0}, "set_xlabel", []any{"time"}, nil)
	if err != nil {
		t.Fatalf("RecordCall: %v", err)
	}
	if got := r.Figure().FindCall(c.ID); got != c {
		t.Errorf("FindCall(%q) = %v", c.ID, got)
	}
	if got := r.Figure().FindCall("plot_999"); got != nil {
		t.Errorf("FindCall(missing) = %v, want nil", got)
	}
}
