// Package record defines the recipe document model and the recorder that
// captures drawing calls into it. A figure record is a plain value tree:
// figure metadata, a map of panel records keyed by grid position, and per
// panel the ordered plot calls and decorations that were issued against it.
package record

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"

	"github.com/figdraw/figrec/codec"
)

// Version is the document format version written into new records.
const Version = "1.0"

// Position identifies a panel by its grid cell.
type Position struct {
	Row int
	Col int
}

// Key returns the canonical map key for the position, e.g. "ax_0_1".
func (p Position) Key() string {
	return fmt.Sprintf("ax_%d_%d", p.Row, p.Col)
}

// ParseKey parses a canonical panel key back into a Position.
func ParseKey(key string) (Position, bool) {
	var p Position
	n, err := fmt.Sscanf(key, "ax_%d_%d", &p.Row, &p.Col)
	if err != nil || n != 2 || p.Row < 0 || p.Col < 0 {
		return Position{}, false
	}
	return p, true
}

// Ref is a token standing in for the result of an earlier call. It
// serializes as a single-key mapping {reference: call_id} and is resolved
// against the replay result cache, never against live object identity.
type Ref struct {
	ID string
}

// MarshalYAML encodes the reference in its canonical wire form.
func (r Ref) MarshalYAML() (any, error) {
	return map[string]string{"reference": r.ID}, nil
}

// AsRef reports whether a decoded value is a reference token and returns it.
// Loaders produce generic maps, so both the typed and decoded forms count.
func AsRef(v any) (Ref, bool) {
	switch t := v.(type) {
	case Ref:
		return t, true
	case map[string]any:
		if id, ok := t["reference"].(string); ok && len(t) == 1 {
			return Ref{ID: id}, true
		}
	case map[string]string:
		if id, ok := t["reference"]; ok && len(t) == 1 {
			return Ref{ID: id}, true
		}
	}
	return Ref{}, false
}

// Arg is one positional argument of a recorded call.
//
// Data holds the serializable value: a scalar, an inline array literal, a
// reference token, or a sidecar file path once the record has been saved.
// Array and Groups carry not-yet-written array payloads between recording
// and serialization; they never appear in the document itself.
type Arg struct {
	Name  string      `yaml:"name"`
	Data  any         `yaml:"data"`
	DType codec.DType `yaml:"dtype,omitempty"`

	// GroupSizes records the original lengths of unequal groups that were
	// NaN-padded into a single matrix for file storage.
	GroupSizes []int `yaml:"group_sizes,omitempty,flow"`

	// Array is an array payload detached from the document: pending
	// storage before a save, resolved sidecar content after a load.
	Array *codec.Array `yaml:"-"`
}

// Resolve returns the argument's array payload, from the detached array if
// present or by parsing an inline literal. Returns nil for non-array data.
func (a *Arg) Resolve() *codec.Array {
	if a.Array != nil {
		return a.Array
	}
	return codec.FromInline(a.Data, a.DType)
}

// Groups returns the argument as unequal-length groups. File-backed data
// is unstacked using the recorded group lengths; inline lists of lists are
// returned as recorded.
func (a *Arg) Groups() ([][]float64, bool) {
	if a.Array != nil && a.Array.IsMatrix() && len(a.GroupSizes) > 0 {
		return codec.UnstackJagged(a.Array, a.GroupSizes), true
	}
	switch v := a.Data.(type) {
	case [][]float64:
		return v, true
	case []any:
		groups := make([][]float64, 0, len(v))
		for _, el := range v {
			inner := codec.FromInline(el, a.DType)
			if inner == nil || inner.IsMatrix() {
				return nil, false
			}
			groups = append(groups, inner.Values)
		}
		if len(groups) > 0 {
			return groups, true
		}
	}
	return nil, false
}

// PendingData is the placeholder stored in Arg.Data while the argument's
// array payload has not been written to a sidecar file yet.
const PendingData = "__pending__"

// IsPending reports whether the argument still carries an unwritten array.
func (a *Arg) IsPending() bool {
	return a.Array != nil
}

/// CallRecord captures one drawing call: its replay-stable id, operation
// name, named positional arguments and the keyword arguments that differed
// from their documented defaults.
type CallRecord struct {
	ID        string         `yaml:"id"`
	Function  string         `yaml:"function"`
	Args      []Arg          `yaml:"args,omitempty"`
	Kwargs    map[string]any `yaml:"kwargs,omitempty"`
	Timestamp string         `yaml:"timestamp,omitempty"`
}

// Kind returns the classification of the recorded operation.
func (c *CallRecord) Kind() Kind {
	if IsDecoration(c.Function) {
		return KindDecoration
	}
	return KindPlot
}

// Arg returns the argument with the given name, or nil.
func (c *CallRecord) Arg(name string) *Arg {
	for i := range c.Args {
		if c.Args[i].Name == name {
			return &c.Args[i]
		}
	}
	return nil
}

// TextRecord is a figure-level text element such as a suptitle.
type TextRecord struct {
	Text   string         `yaml:"text"`
	Kwargs map[string]any `yaml:"kwargs,omitempty"`
}

// PanelLabels configures automatic panel lettering ("a", "b", ...) applied
// across the grid in row-major order.
type PanelLabels struct {
	Labels     []string   `yaml:"labels,omitempty,flow"`
	Loc        string     `yaml:"loc,omitempty"`
	Offset     [2]float64 `yaml:"offset,omitempty,flow"`
	FontSize   float64    `yaml:"fontsize,omitempty"`
	FontWeight string     `yaml:"fontweight,omitempty"`
	Color      string     `yaml:"color,omitempty"`
}

// AxesRecord holds everything recorded against one panel.
type AxesRecord struct {
	Row         int            `yaml:"row"`
	Col         int            `yaml:"col"`
	Calls       []*CallRecord  `yaml:"calls,omitempty"`
	Decorations []*CallRecord  `yaml:"decorations,omitempty"`
	Caption     string         `yaml:"caption,omitempty"`
	Visible     *bool          `yaml:"visible,omitempty"`
	Stats       map[string]any `yaml:"stats,omitempty"`
}

// IsVisible reports whether the panel should be drawn. Absent means visible.
func (a *AxesRecord) IsVisible() bool {
	return a.Visible == nil || *a.Visible
}

// AllCalls returns plot calls followed by decorations, preserving the
// recording order within each group.
func (a *AxesRecord) AllCalls() []*CallRecord {
	out := make([]*CallRecord, 0, len(a.Calls)+len(a.Decorations))
	out = append(out, a.Calls...)
	out = append(out, a.Decorations...)
	return out
}

// FigureRecord is the root of a recipe document. The in-memory form is
// flat; the document form nests geometry and figure-wide decorations
// under a "figure" block and caption/stats under "metadata" (see
// MarshalYAML).
type FigureRecord struct {
	Version           string
	ID                string
	Created           string
	Backend           string
	FigSize           [2]float64
	DPI               float64
	Layout            map[string]float64
	ConstrainedLayout bool
	Style             map[string]any
	Axes              map[string]*AxesRecord
	SupTitle          *TextRecord
	SupXLabel         *TextRecord
	SupYLabel         *TextRecord
	PanelLabels       *PanelLabels
	Caption           string
	Metadata          map[string]any
	Stats             map[string]any
}

// figureBlock is the nested "figure" section of the document: geometry,
// style and figure-wide decorations.
type figureBlock struct {
	FigSize           [2]float64         `yaml:"figsize,flow"`
	DPI               float64            `yaml:"dpi"`
	Backend           string             `yaml:"backend,omitempty"`
	Layout            map[string]float64 `yaml:"layout,omitempty"`
	ConstrainedLayout bool               `yaml:"constrained_layout,omitempty"`
	Style             map[string]any     `yaml:"style,omitempty"`
	SupTitle          *TextRecord        `yaml:"suptitle,omitempty"`
	SupXLabel         *TextRecord        `yaml:"supxlabel,omitempty"`
	SupYLabel         *TextRecord        `yaml:"supylabel,omitempty"`
	PanelLabels       *PanelLabels       `yaml:"panel_labels,omitempty"`
}

// figureDoc is the on-disk document shape: identity fields at the top
// level, then the figure block, the axes map and the metadata block.
type figureDoc struct {
	Version  string                 `yaml:"version"`
	ID       string                 `yaml:"id"`
	Created  string                 `yaml:"created"`
	Figure   figureBlock            `yaml:"figure"`
	Axes     map[string]*AxesRecord `yaml:"axes"`
	Metadata map[string]any         `yaml:"metadata,omitempty"`
}

// MarshalYAML writes the record in the document layout.
func (f *FigureRecord) MarshalYAML() (any, error) {
	doc := figureDoc{
		Version: f.Version,
		ID:      f.ID,
		Created: f.Created,
		Figure: figureBlock{
			FigSize:           f.FigSize,
			DPI:               f.DPI,
			Backend:           f.Backend,
			Layout:            f.Layout,
			ConstrainedLayout: f.ConstrainedLayout,
			Style:             f.Style,
			SupTitle:          f.SupTitle,
			SupXLabel:         f.SupXLabel,
			SupYLabel:         f.SupYLabel,
			PanelLabels:       f.PanelLabels,
		},
		Axes: f.Axes,
	}
	meta := make(map[string]any, len(f.Metadata)+2)
	for k, v := range f.Metadata {
		meta[k] = v
	}
	if f.Caption != "" {
		meta["caption"] = f.Caption
	}
	if len(f.Stats) > 0 {
		meta["stats"] = f.Stats
	}
	if len(meta) > 0 {
		doc.Metadata = meta
	}
	return doc, nil
}

// UnmarshalYAML reads the document layout back into the flat record.
func (f *FigureRecord) UnmarshalYAML(value *yaml.Node) error {
	var doc figureDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	f.Version = doc.Version
	f.ID = doc.ID
	f.Created = doc.Created
	f.FigSize = doc.Figure.FigSize
	f.DPI = doc.Figure.DPI
	f.Backend = doc.Figure.Backend
	f.Layout = doc.Figure.Layout
	f.ConstrainedLayout = doc.Figure.ConstrainedLayout
	f.Style = doc.Figure.Style
	f.SupTitle = doc.Figure.SupTitle
	f.SupXLabel = doc.Figure.SupXLabel
	f.SupYLabel = doc.Figure.SupYLabel
	f.PanelLabels = doc.Figure.PanelLabels
	f.Axes = doc.Axes
	if doc.Metadata != nil {
		if c, ok := doc.Metadata["caption"].(string); ok {
			f.Caption = c
			delete(doc.Metadata, "caption")
		}
		if s, ok := doc.Metadata["stats"].(map[string]any); ok {
			f.Stats = s
			delete(doc.Metadata, "stats")
		}
		if len(doc.Metadata) > 0 {
			f.Metadata = doc.Metadata
		}
	}
	return nil
}

// NewFigureRecord creates an empty figure record with a fresh id and
// creation timestamp.
func NewFigureRecord(width, height, dpi float64) *FigureRecord {
	return &FigureRecord{
		Version: Version,
		ID:      newFigureID(),
		Created: time.Now().UTC().Format(time.RFC3339),
		FigSize: [2]float64{width, height},
		DPI:     dpi,
		Axes:    make(map[string]*AxesRecord),
	}
}

func newFigureID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to a time-derived id; uniqueness within a process is
		// all the id is used for.
		return fmt.Sprintf("fig_%08x", time.Now().UnixNano()&0xffffffff)
	}
	return "fig_" + hex.EncodeToString(b[:])
}

// AxesAt returns the panel record at the position, creating it on demand.
func (f *FigureRecord) AxesAt(pos Position) *AxesRecord {
	if f.Axes == nil {
		f.Axes = make(map[string]*AxesRecord)
	}
	key := pos.Key()
	ax, ok := f.Axes[key]
	if !ok {
		ax = &AxesRecord{Row: pos.Row, Col: pos.Col}
		f.Axes[key] = ax
	}
	return ax
}

// GridShape derives the grid dimensions from the recorded panel positions.
// An empty record reports a 1x1 grid.
func (f *FigureRecord) GridShape() (rows, cols int) {
	rows, cols = 1, 1
	for _, ax := range f.Axes {
		if ax.Row+1 > rows {
			rows = ax.Row + 1
		}
		if ax.Col+1 > cols {
			cols = ax.Col + 1
		}
	}
	return rows, cols
}

// SortedAxes returns the panel records in row-major order. Map iteration
// order is random, so every consumer that cares about determinism goes
// through this.
func (f *FigureRecord) SortedAxes() []*AxesRecord {
	out := make([]*AxesRecord, 0, len(f.Axes))
	for _, ax := range f.Axes {
		out = append(out, ax)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// FindCall locates a call by id anywhere in the figure.
func (f *FigureRecord) FindCall(id string) *CallRecord {
	for _, ax := range f.SortedAxes() {
		for _, c := range ax.AllCalls() {
			if c.ID == id {
				return c
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the record. Mutating the copy, as the
// overrides loader does, leaves the original untouched.
func (f *FigureRecord) Clone() (*FigureRecord, error) {
	dst := &FigureRecord{}
	if err := deepcopy.Copy(dst, f); err != nil {
		return nil, fmt.Errorf("record: clone figure: %w", err)
	}
	return dst, nil
}
