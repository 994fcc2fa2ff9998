package codec

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestShouldStoreInlineBoundary(t *testing.T) {
	at := NewVector(make([]float64, InlineThreshold))
	if !ShouldStoreInline(at) {
		t.Errorf("ShouldStoreInline(%d elements) = false, want true", InlineThreshold)
	}
	over := NewVector(make([]float64, InlineThreshold+1))
	if ShouldStoreInline(over) {
		t.Errorf("ShouldStoreInline(%d elements) = true, want false", InlineThreshold+1)
	}
}

func TestNewMatrixRagged(t *testing.T) {
	_, err := NewMatrix([][]float64{{1, 2}, {3}})
	if err == nil {
		t.Fatal("NewMatrix with ragged rows should fail")
	}
}

func TestInlineRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		a    *Array
	}{
		{"vector", NewVector([]float64{1, 2.5, -3})},
		{"matrix", mustMatrix(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})},
		{"empty", NewVector(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromInline(tt.a.ToInline(), tt.a.DType)
			if got == nil {
				t.Fatal("FromInline returned nil")
			}
			if !got.Equal(tt.a) {
				t.Errorf("round trip = %+v, want %+v", got, tt.a)
			}
		})
	}
}

func TestFromInlineUntyped(t *testing.T) {
	// A YAML decoder hands back []any trees.
	got := FromInline([]any{1, 2.5, 3}, "")
	if got == nil {
		t.Fatal("FromInline([]any) returned nil")
	}
	want := NewVector([]float64{1, 2.5, 3})
	if !got.Equal(want) {
		t.Errorf("FromInline = %v, want %v", got.Values, want.Values)
	}

	nested := FromInline([]any{[]any{1, 2}, []any{3, 4}}, "")
	if nested == nil || !nested.IsMatrix() {
		t.Fatalf("FromInline(nested) = %+v, want 2x2 matrix", nested)
	}
	if nested.Rows != 2 || nested.Cols != 2 {
		t.Errorf("shape = %dx%d, want 2x2", nested.Rows, nested.Cols)
	}

	if got := FromInline("not an array", ""); got != nil {
		t.Errorf("FromInline(string) = %+v, want nil", got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		a    *Array
	}{
		{"vector", NewVector([]float64{0.5, 1.5, 2.5, math.NaN()})},
		{"matrix", mustMatrix(t, [][]float64{{1, 2, 3}, {4, 5, 6}})},
		{"int64", &Array{Values: []float64{1, 2, 3}, DType: Int64}},
		{"bool", &Array{Values: []float64{1, 0, 1}, DType: Bool}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arr")
			written, err := SaveArray(tt.a, path, FormatCSV)
			if err != nil {
				t.Fatalf("SaveArray: %v", err)
			}
			if filepath.Ext(written) != ".csv" {
				t.Errorf("written path %q, want .csv extension", written)
			}
			got, err := LoadArray(written)
			if err != nil {
				t.Fatalf("LoadArray: %v", err)
			}
			if !got.Equal(tt.a) {
				t.Errorf("round trip = %+v, want %+v", got, tt.a)
			}
		})
	}
}

func TestCSVDtypeHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arr")
	written, err := SaveArray(&Array{Values: []float64{7}, DType: Int64}, path, FormatCSV)
	if err != nil {
		t.Fatalf("SaveArray: %v", err)
	}
	raw, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "# dtype: int64\n7\n"
	if string(raw) != want {
		t.Errorf("file contents = %q, want %q", raw, want)
	}
}

func TestNPZRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		a    *Array
	}{
		{"vector", NewVector([]float64{1, 2, 3, math.Inf(1), math.NaN()})},
		{"matrix", mustMatrix(t, [][]float64{{1.25, -2.5}, {0, 1e300}})},
		{"int64", &Array{Values: []float64{-9, 0, 9}, DType: Int64}},
		{"bool", &Array{Values: []float64{0, 1}, DType: Bool}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arr")
			written, err := SaveArray(tt.a, path, FormatNPZ)
			if err != nil {
				t.Fatalf("SaveArray: %v", err)
			}
			got, err := LoadArray(written)
			if err != nil {
				t.Fatalf("LoadArray: %v", err)
			}
			if !got.Equal(tt.a) {
				t.Errorf("round trip = %+v, want %+v", got, tt.a)
			}
		})
	}
}

func TestLoadArrayUnknownExtension(t *testing.T) {
	if _, err := LoadArray("data.bin"); err == nil {
		t.Error("LoadArray with unknown extension should fail")
	}
}

func TestStackJagged(t *testing.T) {
	groups := [][]float64{{1, 2, 3, 4}, {5, 6}, {7, 8, 9}}
	stacked, lengths := StackJagged(groups)
	if stacked == nil {
		t.Fatal("StackJagged returned nil")
	}
	if stacked.Rows != 4 || stacked.Cols != 3 {
		t.Fatalf("shape = %dx%d, want 4x3", stacked.Rows, stacked.Cols)
	}
	wantLengths := []int{4, 2, 3}
	for i, n := range wantLengths {
		if lengths[i] != n {
			t.Errorf("lengths[%d] = %d, want %d", i, lengths[i], n)
		}
	}
	// Padding cells are NaN.
	if !math.IsNaN(stacked.At(2, 1)) || !math.IsNaN(stacked.At(3, 2)) {
		t.Error("padding cells should be NaN")
	}
	if stacked.At(1, 1) != 6 {
		t.Errorf("At(1,1) = %v, want 6", stacked.At(1, 1))
	}

	back := UnstackJagged(stacked, lengths)
	if len(back) != len(groups) {
		t.Fatalf("UnstackJagged groups = %d, want %d", len(back), len(groups))
	}
	for i, g := range groups {
		if len(back[i]) != len(g) {
			t.Fatalf("group %d length = %d, want %d", i, len(back[i]), len(g))
		}
		for j, v := range g {
			if back[i][j] != v {
				t.Errorf("group %d[%d] = %v, want %v", i, j, back[i][j], v)
			}
		}
	}
}

func TestUnstackJaggedByPadding(t *testing.T) {
	stacked, _ := StackJagged([][]float64{{1, 2, 3}, {4}})
	back := UnstackJagged(stacked, nil)
	if len(back[0]) != 3 || len(back[1]) != 1 {
		t.Errorf("lengths = %d,%d, want 3,1", len(back[0]), len(back[1]))
	}
}

func TestStackJaggedEmpty(t *testing.T) {
	if a, _ := StackJagged(nil); a != nil {
		t.Errorf("StackJagged(nil) = %+v, want nil", a)
	}
	if a, _ := StackJagged([][]float64{{}, {}}); a != nil {
		t.Errorf("StackJagged(all empty) = %+v, want nil", a)
	}
}

func TestJaggedFileRoundTrip(t *testing.T) {
	groups := [][]float64{{1.5, 2.5, 3.5}, {4.5}}
	stacked, lengths := StackJagged(groups)
	path := filepath.Join(t.TempDir(), "groups")
	written, err := SaveArray(stacked, path, FormatCSV)
	if err != nil {
		t.Fatalf("SaveArray: %v", err)
	}
	loaded, err := LoadArray(written)
	if err != nil {
		t.Fatalf("LoadArray: %v", err)
	}
	back := UnstackJagged(loaded, lengths)
	for i, g := range groups {
		if len(back[i]) != len(g) {
			t.Fatalf("group %d length = %d, want %d", i, len(back[i]), len(g))
		}
		for j, v := range g {
			if back[i][j] != v {
				t.Errorf("group %d[%d] = %v, want %v", i, j, back[i][j], v)
			}
		}
	}
}

func mustMatrix(t *testing.T, rows [][]float64) *Array {
	t.Helper()
	a, err := NewMatrix(rows)
	if err != nil {
		t.Fatal(err)
	}
	return a
}
