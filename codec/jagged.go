package codec

import "math"

// StackJagged column-stacks groups of unequal length into one matrix: each
// group becomes a column, shorter groups padded with NaN to the longest
// group's length. The returned lengths record the original per-group sizes
// so UnstackJagged can reverse the padding exactly.
//
// Stacking an empty group set yields a nil array; callers fall back to
// inline literal storage in that case.
func StackJagged(groups [][]float64) (*Array, []int) {
	if len(groups) == 0 {
		return nil, nil
	}
	maxLen := 0
	lengths := make([]int, len(groups))
	for i, g := range groups {
		lengths[i] = len(g)
		if len(g) > maxLen {
			maxLen = len(g)
		}
	}
	if maxLen == 0 {
		return nil, nil
	}

	values := make([]float64, maxLen*len(groups))
	for i := range values {
		values[i] = math.NaN()
	}
	for col, g := range groups {
		for row, v := range g {
			values[row*len(groups)+col] = v
		}
	}
	return &Array{Values: values, Rows: maxLen, Cols: len(groups), DType: Float64}, lengths
}

// UnstackJagged reverses StackJagged: column i of the matrix is truncated to
// lengths[i]. When lengths is nil the NaN padding itself delimits the groups
// (trailing NaNs are dropped per column).
func UnstackJagged(a *Array, lengths []int) [][]float64 {
	if a == nil || !a.IsMatrix() {
		return nil
	}
	groups := make([][]float64, a.Cols)
	for col := 0; col < a.Cols; col++ {
		n := a.Rows
		if lengths != nil && col < len(lengths) {
			n = lengths[col]
			if n > a.Rows {
				n = a.Rows
			}
		} else {
			for n > 0 && math.IsNaN(a.At(n-1, col)) {
				n--
			}
		}
		g := make([]float64, n)
		for row := 0; row < n; row++ {
			g[row] = a.At(row, col)
		}
		groups[col] = g
	}
	return groups
}

// IsJagged reports whether nested rows have unequal lengths.
func IsJagged(rows [][]float64) bool {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(rows[0]) {
			return true
		}
	}
	return false
}
