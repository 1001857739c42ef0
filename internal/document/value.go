package document

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Type names reported for document values.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeMap    = "map"
	TypeList   = "list"
	TypeNull   = "null"
)

// TypeName returns the document-level type name of v.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBool
	case map[string]any:
		return TypeMap
	case []any:
		return TypeList
	}
	if IsNumber(v) {
		return TypeNumber
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return TypeMap
	case reflect.Slice, reflect.Array:
		return TypeList
	}
	return fmt.Sprintf("%T", v)
}

// IsNumber reports whether v holds any Go numeric kind.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

// IsContainer reports whether v is a mapping or a sequence of any Go type.
func IsContainer(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// Render formats v the way it appears in error messages: JSON when possible.
func Render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Describe formats v together with its type name, e.g. `[] (list)`.
func Describe(v any) string {
	return fmt.Sprintf("%s (%s)", Render(v), TypeName(v))
}

// Clone returns a deep copy of a document tree.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Normalize converts an arbitrary Go value into the document shape. Typed
// maps and slices are rebuilt as map[string]any and []any, pointers are
// dereferenced, times become RFC 3339 strings and structs are passed
// through their JSON encoding.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, nil
	case json.Number:
		return normalizeNumber(t)
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case []byte:
		return string(t), nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := Normalize(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			n, err := Normalize(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			n, err := Normalize(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = n
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case reflect.Struct:
		return normalizeViaJSON(v)
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	}
	return nil, fmt.Errorf("unsupported document value of type %T", v)
}

func normalizeViaJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	var out any
	if err := decodeJSON(b, &out); err != nil {
		return nil, err
	}
	return Normalize(out)
}

func normalizeNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return f, nil
}

// ToFloat converts any numeric document value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return math.NaN(), false
}
