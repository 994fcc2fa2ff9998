// Package codec decides how numeric array arguments of recorded drawing
// calls are stored: inline in the recipe document when small, or in a
// sidecar file when large. It supports three storage formats:
//
//   - FormatCSV: a human-readable delimited file with a one-line dtype header
//   - FormatNPZ: a compressed binary container holding one named array entry
//   - FormatInline: literal storage inside the recipe document
//
// Jagged "array of arrays" arguments (grouped samples of unequal length) are
// column-stacked with NaN padding before file storage; the original group
// lengths are recorded alongside so that the padding is reversible.
package codec

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// InlineThreshold is the maximum element count for inline storage.
// Arrays with more elements are written to a sidecar file.
const InlineThreshold = 100

// DType identifies the element type of an Array. Elements are held as
// float64 in memory regardless of dtype; the dtype governs how values are
// written to and parsed from storage.
type DType string

const (
	Float64 DType = "float64"
	Int64   DType = "int64"
	Bool    DType = "bool"
)

// Format selects the sidecar storage format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatNPZ    Format = "npz"
	FormatInline Format = "inline"
)

// Ext returns the file extension for the format, including the dot.
// FormatInline has no file representation and returns "".
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatNPZ:
		return ".npz"
	default:
		return ""
	}
}

// IsDataFile reports whether path names a sidecar data file by extension.
func IsDataFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".npz":
		return true
	}
	return false
}

// Array is a dense numeric array, either a vector or a row-major matrix.
// Values are always held as float64; DType records the element type the
// values originated from so a round trip restores it.
type Array struct {
	Values []float64
	// Rows and Cols describe matrix shape. Rows == 0 marks a vector of
	// len(Values) elements.
	Rows, Cols int
	DType      DType
}

// NewVector wraps a float64 slice as a one-dimensional Array.
// The slice is not copied.
func NewVector(values []float64) *Array {
	return &Array{Values: values, DType: Float64}
}

// NewMatrix builds a row-major matrix Array from nested rows.
// All rows must have equal length.
func NewMatrix(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return &Array{Rows: 0, DType: Float64}, nil
	}
	cols := len(rows[0])
	values := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("codec: ragged matrix: row %d has %d columns, want %d", i, len(row), cols)
		}
		values = append(values, row...)
	}
	return &Array{Values: values, Rows: len(rows), Cols: cols, DType: Float64}, nil
}

// Len returns the total element count.
func (a *Array) Len() int { return len(a.Values) }

// IsMatrix reports whether the array is two-dimensional.
func (a *Array) IsMatrix() bool { return a.Rows > 0 }

// At returns the element at row i, column j of a matrix.
func (a *Array) At(i, j int) float64 { return a.Values[i*a.Cols+j] }

// Row returns row i of a matrix as a slice view.
func (a *Array) Row(i int) []float64 { return a.Values[i*a.Cols : (i+1)*a.Cols] }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	values := make([]float64, len(a.Values))
	copy(values, a.Values)
	return &Array{Values: values, Rows: a.Rows, Cols: a.Cols, DType: a.DType}
}

// Equal reports whether two arrays have identical shape, dtype and values.
// NaN elements compare equal to NaN so padded matrices can be compared.
func (a *Array) Equal(b *Array) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols || a.DType != b.DType || len(a.Values) != len(b.Values) {
		return false
	}
	for i, v := range a.Values {
		w := b.Values[i]
		if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			return false
		}
	}
	return true
}

// ShouldStoreInline reports whether the array is small enough for inline
// storage in the recipe document. An array of exactly InlineThreshold
// elements is stored inline; one element more is file-backed.
func ShouldStoreInline(a *Array) bool {
	return a.Len() <= InlineThreshold
}

// ToInline converts an array to its inline literal representation:
// []float64 for vectors, [][]float64 for matrices.
func (a *Array) ToInline() any {
	if !a.IsMatrix() {
		out := make([]float64, len(a.Values))
		copy(out, a.Values)
		return out
	}
	rows := make([][]float64, a.Rows)
	for i := range rows {
		row := make([]float64, a.Cols)
		copy(row, a.Row(i))
		rows[i] = row
	}
	return rows
}

// FromInline parses an inline literal back into an Array. It accepts the
// shapes produced by ToInline as well as the loosely typed []any trees a
// YAML decoder yields. Returns nil if data is not array-like.
func FromInline(data any, dtype DType) *Array {
	if dtype == "" {
		dtype = Float64
	}
	switch v := data.(type) {
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return &Array{Values: out, DType: dtype}
	case [][]float64:
		a, err := NewMatrix(v)
		if err != nil {
			return nil
		}
		a.DType = dtype
		return a
	case []any:
		if len(v) == 0 {
			return &Array{DType: dtype}
		}
		if _, nested := asFloat(v[0]); nested {
			values := make([]float64, 0, len(v))
			for _, el := range v {
				f, ok := asFloat(el)
				if !ok {
					return nil
				}
				values = append(values, f)
			}
			return &Array{Values: values, DType: dtype}
		}
		rows := make([][]float64, 0, len(v))
		for _, el := range v {
			inner, ok := el.([]any)
			if !ok {
				return nil
			}
			row := make([]float64, 0, len(inner))
			for _, iv := range inner {
				f, ok := asFloat(iv)
				if !ok {
					return nil
				}
				row = append(row, f)
			}
			rows = append(rows, row)
		}
		a, err := NewMatrix(rows)
		if err != nil {
			return nil
		}
		a.DType = dtype
		return a
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// SaveArray writes the array to path in the given format, adjusting the
// file extension to match. It returns the actual path written.
// FormatInline is not a file format and is rejected.
func SaveArray(a *Array, path string, format Format) (string, error) {
	switch format {
	case FormatCSV:
		path = replaceExt(path, ".csv")
		return path, saveCSV(a, path)
	case FormatNPZ:
		path = replaceExt(path, ".npz")
		return path, saveNPZ(a, path)
	default:
		return "", fmt.Errorf("codec: format %q cannot be written to a file", format)
	}
}

// LoadArray reads an array previously written by SaveArray, dispatching on
// the file extension.
func LoadArray(path string) (*Array, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".npz":
		return loadNPZ(path)
	}
	return nil, fmt.Errorf("codec: unknown data file extension %q", filepath.Ext(path))
}

func replaceExt(path, ext string) string {
	if old := filepath.Ext(path); old != "" && IsDataFile(path) {
		return strings.TrimSuffix(path, old) + ext
	}
	return path + ext
}
