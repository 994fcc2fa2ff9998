// Package recipe reads and writes recipe documents. A recipe is a YAML
// file describing a recorded figure, with large array arguments stored in
// sidecar files under a <stem>_data/ directory next to the document.
package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/figdraw/figrec/codec"
	"github.com/figdraw/figrec/record"
)

var (
	// ErrMalformed marks a document that parsed but is not a usable recipe.
	ErrMalformed = errors.New("recipe: malformed document")
	// ErrUnsupportedVersion marks a document written by an incompatible
	// format version.
	ErrUnsupportedVersion = errors.New("recipe: unsupported document version")
	// ErrMissingSidecar marks a document referencing a data file that does
	// not exist.
	ErrMissingSidecar = errors.New("recipe: missing data file")
)

// Options configure Save.
type Options struct {
	// Format selects the sidecar file format for large arrays.
	Format codec.Format
	// InlineAll forces every array inline regardless of size, producing a
	// single self-contained document with no sidecar directory.
	InlineAll bool
}

// Option mutates Options.
type Option func(*Options)

// WithFormat selects the sidecar storage format. The default is CSV.
func WithFormat(f codec.Format) Option {
	return func(o *Options) { o.Format = f }
}

// WithInlineData forces all arrays inline so the document has no sidecar
// files.
func WithInlineData() Option {
	return func(o *Options) { o.InlineAll = true }
}

// Save writes the figure record to path as YAML. Array arguments above the
// inline threshold are written to sidecar files named
// <stem>_data/<call_id>_<arg>.<ext> and referenced from the document by
// relative path. The record passed in is not modified.
func Save(fig *record.FigureRecord, path string, opts ...Option) error {
	o := Options{Format: codec.FormatCSV}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Format == codec.FormatInline {
		o.InlineAll = true
		o.Format = codec.FormatCSV
	}

	path = recipePath(path)
	doc, err := fig.Clone()
	if err != nil {
		return err
	}

	dataDir := dataDirFor(path)
	for _, ax := range doc.SortedAxes() {
		for _, call := range ax.AllCalls() {
			for i := range call.Args {
				if err := storeArg(&call.Args[i], call.ID, dataDir, o); err != nil {
					return err
				}
			}
		}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("recipe: encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("recipe: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("recipe: %w", err)
	}
	return nil
}

// storeArg resolves one argument's storage. Detached arrays either go back
// inline or into a sidecar file; everything else passes through untouched.
func storeArg(a *record.Arg, callID string, dataDir string, o Options) error {
	arr := a.Array
	if arr == nil {
		return nil
	}
	a.Array = nil

	if o.InlineAll || codec.ShouldStoreInline(arr) {
		if len(a.GroupSizes) > 0 {
			a.Data = codec.UnstackJagged(arr, a.GroupSizes)
			a.GroupSizes = nil
		} else {
			a.Data = arr.ToInline()
		}
		return nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("recipe: %w", err)
	}
	name := fmt.Sprintf("%s_%s", callID, a.Name)
	written, err := codec.SaveArray(arr, filepath.Join(dataDir, name), o.Format)
	if err != nil {
		return fmt.Errorf("recipe: store %s: %w", name, err)
	}
	a.Data = filepath.ToSlash(filepath.Join(filepath.Base(dataDir), filepath.Base(written)))
	return nil
}

// Load reads a recipe document and resolves its sidecar data files. Passing
// the path of a rendered image loads the recipe saved next to it. If a
// sibling overrides file exists its contents are merged into the returned
// record; the document on disk is never modified.
func Load(path string) (*record.FigureRecord, error) {
	path, err := findRecipe(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}

	fig := &record.FigureRecord{}
	if err := yaml.Unmarshal(raw, fig); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if fig.Version == "" || fig.Axes == nil {
		return nil, fmt.Errorf("%w: %s: not a recipe document", ErrMalformed, path)
	}
	if !strings.HasPrefix(fig.Version, "1.") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, fig.Version)
	}

	for key, ax := range fig.Axes {
		if pos, ok := record.ParseKey(key); ok {
			ax.Row, ax.Col = pos.Row, pos.Col
		}
		for _, call := range ax.AllCalls() {
			for i := range call.Args {
				if err := resolveArg(&call.Args[i], filepath.Dir(path)); err != nil {
					return nil, err
				}
			}
		}
	}

	if ov, err := LoadOverrides(OverridesPath(path)); err == nil {
		ov.Apply(fig)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return fig, nil
}

// resolveArg loads a sidecar-backed argument's payload into the record.
func resolveArg(a *record.Arg, dir string) error {
	rel, ok := a.Data.(string)
	if !ok || !codec.IsDataFile(rel) {
		return nil
	}
	full := filepath.Join(dir, filepath.FromSlash(rel))
	arr, err := codec.LoadArray(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingSidecar, rel)
		}
		return fmt.Errorf("recipe: load %s: %w", rel, err)
	}
	arr.DType = nonEmpty(a.DType, arr.DType)
	a.Array = arr
	return nil
}

func nonEmpty(a, b codec.DType) codec.DType {
	if a != "" {
		return a
	}
	return b
}

// recipePath normalizes a target path to the document's .yaml location.
// Saving "figure.png" writes "figure.yaml" next to the image.
func recipePath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return path
	case "":
		return path + ".yaml"
	default:
		return strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	}
}

// findRecipe maps a load path to an existing document, accepting the
// document itself or a rendered image with a recipe sibling.
func findRecipe(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return path, nil
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".yaml", ".yml"} {
		if _, err := os.Stat(stem + ext); err == nil {
			return stem + ext, nil
		}
	}
	return "", fmt.Errorf("recipe: no recipe found for %s", path)
}

// dataDirFor returns the sidecar directory for a document path.
func dataDirFor(path string) string {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return stem + "_data"
}
