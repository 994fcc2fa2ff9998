package codec

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// dtypeHeader is the one-line comment carrying the dtype at the top of a
// delimited data file, e.g. "# dtype: float64".
const dtypeHeader = "# dtype: "

// saveCSV writes an array as a delimited file. The first line is the dtype
// header; a vector is written one value per row, a matrix one row per line.
func saveCSV(a *Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(bw, "%s%s\n", dtypeHeader, dtype(a)); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}

	w := csv.NewWriter(bw)
	if a.IsMatrix() {
		row := make([]string, a.Cols)
		for i := 0; i < a.Rows; i++ {
			for j := 0; j < a.Cols; j++ {
				row[j] = formatValue(a.At(i, j), a.DType)
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("codec: write %s: %w", path, err)
			}
		}
	} else {
		for _, v := range a.Values {
			if err := w.Write([]string{formatValue(v, a.DType)}); err != nil {
				return fmt.Errorf("codec: write %s: %w", path, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	return nil
}

// loadCSV reads a delimited data file written by saveCSV. The dtype header
// is honored when present; without it values parse as float64.
func loadCSV(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codec: open %s: %w", path, err)
	}
	defer f.Close()

	dt := Float64
	br := bufio.NewReader(f)
	// Peek at the first line for the dtype header.
	first, err := br.ReadString('\n')
	if err != nil && first == "" {
		return &Array{DType: dt}, nil
	}
	var rows [][]string
	if strings.HasPrefix(first, dtypeHeader) {
		dt = DType(strings.TrimSpace(strings.TrimPrefix(first, dtypeHeader)))
	} else if line := strings.TrimRight(first, "\r\n"); line != "" {
		rows = append(rows, strings.Split(line, ","))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	rest, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", path, err)
	}
	rows = append(rows, rest...)

	if len(rows) == 0 {
		return &Array{DType: dt}, nil
	}

	oneColumn := true
	for _, row := range rows {
		if len(row) != 1 {
			oneColumn = false
			break
		}
	}

	if oneColumn {
		values := make([]float64, 0, len(rows))
		for _, row := range rows {
			v, err := parseValue(row[0])
			if err != nil {
				return nil, fmt.Errorf("codec: read %s: %w", path, err)
			}
			values = append(values, v)
		}
		return &Array{Values: values, DType: dt}, nil
	}

	cols := len(rows[0])
	values := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("codec: read %s: row %d has %d columns, want %d", path, i, len(row), cols)
		}
		for _, field := range row {
			v, err := parseValue(field)
			if err != nil {
				return nil, fmt.Errorf("codec: read %s: %w", path, err)
			}
			values = append(values, v)
		}
	}
	return &Array{Values: values, Rows: len(rows), Cols: cols, DType: dt}, nil
}

func dtype(a *Array) DType {
	if a.DType == "" {
		return Float64
	}
	return a.DType
}

func formatValue(v float64, dt DType) string {
	switch dt {
	case Int64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
	case Bool:
		if v != 0 {
			return "true"
		}
		return "false"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "true", "True":
		return 1, nil
	case "false", "False":
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
