package pipe

import (
	"github.com/vk/pipesgo/internal/document"
	"github.com/zclconf/go-cty/cty"
)

// checkType validates v against the declared type of a reference.
func checkType(source Source, v any, want cty.Type) error {
	if conforms(v, want) {
		return nil
	}
	return newError(ErrTypeMismatch, "%s node type mismatch: '%s' (expected '%s')",
		source, document.TypeName(v), typeName(want))
}

// conforms reports whether v structurally matches t. No conversion is
// attempted: a string never satisfies number, a mapping never satisfies a
// list. Null satisfies every type.
func conforms(v any, t cty.Type) bool {
	if t.Equals(cty.DynamicPseudoType) || v == nil {
		return true
	}

	switch {
	case t.Equals(cty.String):
		_, ok := v.(string)
		return ok
	case t.Equals(cty.Number):
		return document.IsNumber(v)
	case t.Equals(cty.Bool):
		_, ok := v.(bool)
		return ok

	case t.IsMapType():
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for _, item := range m {
			if !conforms(item, t.ElementType()) {
				return false
			}
		}
		return true

	case t.IsObjectType():
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for name, attrType := range t.AttributeTypes() {
			item, present := m[name]
			if !present {
				if t.AttributeOptional(name) {
					continue
				}
				return false
			}
			if !conforms(item, attrType) {
				return false
			}
		}
		for name := range m {
			if !t.HasAttribute(name) {
				return false
			}
		}
		return true

	case t.IsListType(), t.IsSetType():
		l, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range l {
			if !conforms(item, t.ElementType()) {
				return false
			}
		}
		return true

	case t.IsTupleType():
		l, ok := v.([]any)
		elemTypes := t.TupleElementTypes()
		if !ok || len(l) != len(elemTypes) {
			return false
		}
		for i, item := range l {
			if !conforms(item, elemTypes[i]) {
				return false
			}
		}
		return true
	}
	return false
}
