package recipe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/figdraw/figrec/record"
)

// Overrides hold edits applied on top of a recipe document at load time.
// They live in a sibling JSON file so the document itself stays pristine.
type Overrides struct {
	// Style entries replace or extend the figure-level style map.
	Style map[string]any `json:"manual_overrides,omitempty"`
	// Calls maps a call id to keyword arguments merged over that call's
	// recorded kwargs.
	Calls map[string]map[string]any `json:"call_overrides,omitempty"`
}

// OverridesPath returns the overrides file location for a recipe document:
// <stem>.overrides.json next to the document.
func OverridesPath(recipePath string) string {
	stem := strings.TrimSuffix(recipePath, filepath.Ext(recipePath))
	return stem + ".overrides.json"
}

// LoadOverrides reads an overrides file. A missing file returns
// os.ErrNotExist so callers can treat it as "no overrides".
func LoadOverrides(path string) (*Overrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ov := &Overrides{}
	if err := json.Unmarshal(raw, ov); err != nil {
		return nil, fmt.Errorf("recipe: parse overrides %s: %w", path, err)
	}
	return ov, nil
}

// SaveOverrides writes the overrides next to the recipe document.
func SaveOverrides(ov *Overrides, recipePath string) error {
	raw, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return fmt.Errorf("recipe: encode overrides: %w", err)
	}
	return os.WriteFile(OverridesPath(recipePath), append(raw, '\n'), 0o644)
}

// Apply merges the overrides into the record in place. Style entries win
// over recorded style; call overrides win over recorded kwargs. Unknown
// call ids are ignored.
func (ov *Overrides) Apply(fig *record.FigureRecord) {
	if ov == nil || fig == nil {
		return
	}
	if len(ov.Style) > 0 {
		if fig.Style == nil {
			fig.Style = make(map[string]any, len(ov.Style))
		}
		for k, v := range ov.Style {
			fig.Style[k] = v
		}
	}
	for id, kwargs := range ov.Calls {
		call := fig.FindCall(id)
		if call == nil {
			continue
		}
		if call.Kwargs == nil {
			call.Kwargs = make(map[string]any, len(kwargs))
		}
		for k, v := range kwargs {
			call.Kwargs[k] = v
		}
	}
}

// IsEmpty reports whether the overrides carry no edits.
func (ov *Overrides) IsEmpty() bool {
	return ov == nil || (len(ov.Style) == 0 && len(ov.Calls) == 0)
}
