package codec

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// npzEntry is the single named array entry inside the compressed container.
const npzEntry = "data.npy"

var npyMagic = []byte("\x93NUMPY")

// saveNPZ writes the array as a compressed binary container: a zip archive
// holding one NPY (v1.0) entry named "data.npy". The layout matches what
// numpy's savez_compressed produces for a single array, so the sidecar stays
// readable by the ecosystem the recipe format came from.
func saveNPZ(a *Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: npzEntry, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	if err := writeNPY(w, a); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	return nil
}

// loadNPZ reads a container written by saveNPZ. The first .npy entry in the
// archive is used; a "data.npy" entry takes precedence when present.
func loadNPZ(path string) (*Array, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("codec: open %s: %w", path, err)
	}
	defer zr.Close()

	var entry *zip.File
	for _, zf := range zr.File {
		if zf.Name == npzEntry {
			entry = zf
			break
		}
		if entry == nil && strings.HasSuffix(zf.Name, ".npy") {
			entry = zf
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("codec: %s: no array entry in container", path)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", path, err)
	}
	defer rc.Close()

	a, err := readNPY(rc)
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", path, err)
	}
	return a, nil
}

func npyDescr(dt DType) string {
	switch dt {
	case Int64:
		return "<i8"
	case Bool:
		return "|b1"
	default:
		return "<f8"
	}
}

func writeNPY(w io.Writer, a *Array) error {
	shape := fmt.Sprintf("(%d,)", a.Len())
	if a.IsMatrix() {
		shape = fmt.Sprintf("(%d, %d)", a.Rows, a.Cols)
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", npyDescr(dtype(a)), shape)
	// Total preamble (magic + version + length field + header) is padded to
	// a multiple of 64 bytes; the header terminates with a newline.
	pad := 64 - (len(npyMagic)+2+2+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	var hlen [2]byte
	binary.LittleEndian.PutUint16(hlen[:], uint16(len(header)))
	buf.Write(hlen[:])
	buf.WriteString(header)

	switch dtype(a) {
	case Int64:
		for _, v := range a.Values {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(int64(v)))
			buf.Write(b[:])
		}
	case Bool:
		for _, v := range a.Values {
			if v != 0 {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		}
	default:
		for _, v := range a.Values {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			buf.Write(b[:])
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func readNPY(r io.Reader) (*Array, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < 10 || !bytes.HasPrefix(raw, npyMagic) {
		return nil, fmt.Errorf("not an NPY payload")
	}
	major := raw[6]
	var headerLen, offset int
	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(raw[8:10]))
		offset = 10
	case 2, 3:
		if len(raw) < 12 {
			return nil, fmt.Errorf("truncated NPY header")
		}
		headerLen = int(binary.LittleEndian.Uint32(raw[8:12]))
		offset = 12
	default:
		return nil, fmt.Errorf("unsupported NPY version %d", major)
	}
	if len(raw) < offset+headerLen {
		return nil, fmt.Errorf("truncated NPY header")
	}
	header := string(raw[offset : offset+headerLen])
	data := raw[offset+headerLen:]

	descr, err := headerField(header, "descr")
	if err != nil {
		return nil, err
	}
	shapeStr, err := headerField(header, "shape")
	if err != nil {
		return nil, err
	}
	rows, cols, n, err := parseShape(shapeStr)
	if err != nil {
		return nil, err
	}

	values := make([]float64, n)
	var dt DType
	switch strings.Trim(descr, "'\"") {
	case "<f8":
		dt = Float64
		if len(data) < n*8 {
			return nil, fmt.Errorf("truncated NPY data")
		}
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	case "<i8":
		dt = Int64
		if len(data) < n*8 {
			return nil, fmt.Errorf("truncated NPY data")
		}
		for i := range values {
			values[i] = float64(int64(binary.LittleEndian.Uint64(data[i*8:])))
		}
	case "|b1":
		dt = Bool
		if len(data) < n {
			return nil, fmt.Errorf("truncated NPY data")
		}
		for i := range values {
			if data[i] != 0 {
				values[i] = 1
			}
		}
	default:
		return nil, fmt.Errorf("unsupported NPY dtype %s", descr)
	}
	return &Array{Values: values, Rows: rows, Cols: cols, DType: dt}, nil
}

// headerField extracts the value of a key from the NPY header dict. The
// header grammar is fixed enough that string scanning suffices.
func headerField(header, key string) (string, error) {
	idx := strings.Index(header, "'"+key+"'")
	if idx < 0 {
		return "", fmt.Errorf("NPY header missing %q", key)
	}
	rest := header[idx+len(key)+2:]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", fmt.Errorf("malformed NPY header")
	}
	rest = strings.TrimLeft(rest[colon+1:], " ")
	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return "", fmt.Errorf("malformed NPY header")
		}
		return rest[:end+1], nil
	}
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		return "", fmt.Errorf("malformed NPY header")
	}
	return strings.TrimSpace(rest[:end]), nil
}

func parseShape(s string) (rows, cols, n int, err error) {
	s = strings.Trim(s, "() ")
	parts := strings.Split(s, ",")
	dims := make([]int, 0, 2)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, perr := strconv.Atoi(p)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("malformed NPY shape %q", s)
		}
		dims = append(dims, d)
	}
	switch len(dims) {
	case 0:
		return 0, 0, 1, nil // 0-d scalar
	case 1:
		return 0, 0, dims[0], nil
	case 2:
		return dims[0], dims[1], dims[0] * dims[1], nil
	}
	return 0, 0, 0, fmt.Errorf("unsupported NPY rank %d", len(dims))
}
