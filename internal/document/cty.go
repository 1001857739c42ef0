package document

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// FromCty converts a cty.Value into a document tree. Integral numbers become
// int64, other numbers float64.
func FromCty(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("cannot convert unknown value of type %s", val.Type().FriendlyName())
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			item, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = item
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			item, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// ToCty converts a document tree into a cty.Value. Mappings become objects
// and sequences tuples, so heterogeneous trees are representable.
func ToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))
		for _, k := range sortedKeys(t) {
			item, err := ToCty(t[k])
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", k, err)
			}
			attrs[k] = item
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		items := make([]cty.Value, len(t))
		for i, item := range t {
			val, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = val
		}
		return cty.TupleVal(items), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cty.NumberUIntVal(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return cty.NumberFloatVal(rv.Float()), nil
	}

	normalized, err := Normalize(v)
	if err != nil {
		return cty.NilVal, err
	}
	if reflect.TypeOf(normalized) == reflect.TypeOf(v) {
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", v)
	}
	return ToCty(normalized)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
