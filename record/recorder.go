package record

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/figdraw/figrec/codec"
	"github.com/figdraw/figrec/surface"
)

// ErrUnknownOp is returned when a call names an operation outside the
// dispatch table.
var ErrUnknownOp = errors.New("record: unknown operation")

// Recorder accumulates drawing calls into a FigureRecord. It assigns
// replay-stable ids, names positional arguments, converts array payloads
// through the codec package and drops keyword arguments that match their
// documented defaults.
//
// A Recorder is safe for concurrent use; panels recorded from separate
// goroutines interleave at call granularity.
type Recorder struct {
	mu       sync.Mutex
	fig      *FigureRecord
	counters map[string]int
	results  map[surface.Result]string
}

// NewRecorder creates a recorder around a fresh figure record.
func NewRecorder(width, height, dpi float64) *Recorder {
	return &Recorder{
		fig:      NewFigureRecord(width, height, dpi),
		counters: make(map[string]int),
		results:  make(map[surface.Result]string),
	}
}

// Figure returns the record being built.
func (r *Recorder) Figure() *FigureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fig
}

// RegisterResult associates a backend result handle with the call that
// produced it, so later calls passing the handle record a reference token.
func (r *Recorder) RegisterResult(res surface.Result, callID string) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[res] = callID
}

// CallID returns the recorded id for a registered result handle.
func (r *Recorder) CallID(res surface.Result) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.results[res]
	return id, ok
}

// RecordCall appends one call to the panel at pos and returns its record.
// Unknown operations are rejected; everything else is captured verbatim,
// with arrays normalized through the codec rules.
func (r *Recorder) RecordCall(pos Position, op string, args []any, kwargs map[string]any) (*CallRecord, error) {
	spec, known := Op(op)
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	call := &CallRecord{
		ID:        r.nextID(op),
		Function:  op,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for i, v := range args {
		call.Args = append(call.Args, r.convertArg(argName(op, i), v, spec.Special))
	}
	call.Kwargs = r.convertKwargs(spec, kwargs)

	ax := r.fig.AxesAt(pos)
	if spec.Kind == KindDecoration {
		ax.Decorations = append(ax.Decorations, call)
	} else {
		ax.Calls = append(ax.Calls, call)
	}
	return call, nil
}

// nextID issues figure-scoped per-operation ids: plot_000, plot_001, ...
func (r *Recorder) nextID(op string) string {
	n := r.counters[op]
	r.counters[op] = n + 1
	return fmt.Sprintf("%s_%03d", op, n)
}

// convertArg normalizes one positional argument. Result handles become
// reference tokens, small arrays inline literals, large arrays pending
// payloads the serializer writes to sidecar files. Group-taking operations
// set grouped so a list of samples is never mistaken for a matrix.
func (r *Recorder) convertArg(name string, v any, grouped bool) Arg {
	if res, ok := v.(surface.Result); ok {
		if id, found := r.results[res]; found {
			return Arg{Name: name, Data: Ref{ID: id}}
		}
		return Arg{Name: name, Data: res.ID()}
	}

	if grouped {
		if g, ok := v.([][]float64); ok && len(g) > 0 {
			return r.convertGroups(name, g)
		}
	}
	if groups, ok := asGroups(v); ok {
		return r.convertGroups(name, groups)
	}
	if arr, ok := asArray(v); ok {
		return r.convertArray(name, arr)
	}
	if serializable(v) {
		return Arg{Name: name, Data: v}
	}
	return Arg{Name: name, Data: fmt.Sprint(v)}
}

func (r *Recorder) convertArray(name string, arr *codec.Array) Arg {
	if codec.ShouldStoreInline(arr) {
		return Arg{Name: name, Data: arr.ToInline(), DType: arr.DType}
	}
	return Arg{Name: name, Data: PendingData, DType: arr.DType, Array: arr}
}

// convertGroups handles group arguments (boxplot and friends), equal or
// unequal length. Small payloads stay inline as a list of lists, which
// keeps the groups exact with no padding. Large payloads are column-stacked
// into a single matrix and the original lengths recorded alongside, so the
// groups come back in the same orientation they went in.
func (r *Recorder) convertGroups(name string, groups [][]float64) Arg {
	stacked, lengths := codec.StackJagged(groups)
	if stacked == nil || codec.ShouldStoreInline(stacked) {
		return Arg{Name: name, Data: groups}
	}
	return Arg{
		Name:       name,
		Data:       PendingData,
		DType:      stacked.DType,
		GroupSizes: lengths,
		Array:      stacked,
	}
}

// convertKwargs drops entries equal to their documented default and
// normalizes the rest. Keyword arrays always stay inline; sidecar storage
// is reserved for positional data.
func (r *Recorder) convertKwargs(spec OpSpec, kwargs map[string]any) map[string]any {
	if len(kwargs) == 0 {
		return nil
	}
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		// Bookkeeping keys used by callers never belong in the recipe.
		if k == "id" || k == "track" {
			continue
		}
		if def, ok := spec.Defaults[k]; ok && matchesDefault(v, def) {
			continue
		}
		if arr, ok := asArray(v); ok {
			out[k] = arr.ToInline()
			continue
		}
		if groups, ok := asGroups(v); ok {
			out[k] = groups
			continue
		}
		if serializable(v) {
			out[k] = v
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// matchesDefault compares a kwarg against its documented default. Only
// scalars participate; arrays, slices and maps never match, so explicit
// array values are always preserved.
func matchesDefault(v, def any) bool {
	if v == nil || def == nil {
		return v == nil && def == nil
	}
	switch dv := def.(type) {
	case bool:
		bv, ok := v.(bool)
		return ok && bv == dv
	case string:
		sv, ok := v.(string)
		return ok && sv == dv
	}
	df, dok := toFloat(def)
	vf, vok := toFloat(v)
	return dok && vok && df == vf
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

// asArray converts supported numeric payloads into a codec array.
func asArray(v any) (*codec.Array, bool) {
	switch t := v.(type) {
	case *codec.Array:
		return t, t != nil
	case codec.Array:
		return &t, true
	case []float64:
		return codec.NewVector(append([]float64(nil), t...)), true
	case []int:
		vals := make([]float64, len(t))
		for i, n := range t {
			vals[i] = float64(n)
		}
		arr := codec.NewVector(vals)
		arr.DType = codec.Int64
		return arr, true
	case []int64:
		vals := make([]float64, len(t))
		for i, n := range t {
			vals[i] = float64(n)
		}
		arr := codec.NewVector(vals)
		arr.DType = codec.Int64
		return arr, true
	case []bool:
		vals := make([]float64, len(t))
		for i, b := range t {
			if b {
				vals[i] = 1
			}
		}
		arr := codec.NewVector(vals)
		arr.DType = codec.Bool
		return arr, true
	case [][]float64:
		if codec.IsJagged(t) {
			return nil, false
		}
		arr, err := codec.NewMatrix(t)
		if err != nil {
			return nil, false
		}
		return arr, true
	}
	return nil, false
}

// asGroups detects unequal-length group payloads.
func asGroups(v any) ([][]float64, bool) {
	t, ok := v.([][]float64)
	if !ok || !codec.IsJagged(t) {
		return nil, false
	}
	return t, true
}

// serializable reports whether a value can be written to the document
// without conversion.
func serializable(v any) bool {
	switch t := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		Ref:
		return true
	case []string:
		return true
	case []any:
		for _, e := range t {
			if !serializable(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range t {
			if !serializable(e) {
				return false
			}
		}
		return true
	case []float64, []int, [][]float64:
		return true
	case [2]float64:
		return true
	}
	return false
}
