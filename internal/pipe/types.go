// This file contains the declared-type vocabulary and the parser for HCL
// type expressions (e.g. `string`, `list(number)`) used to declare them.

package pipe

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Declared types for the common cases. Any accepts every value.
var (
	Any    = cty.DynamicPseudoType
	String = cty.String
	Number = cty.Number
	Bool   = cty.Bool
	Map    = cty.Map(cty.DynamicPseudoType)
	List   = cty.List(cty.DynamicPseudoType)
)

// ParseType parses an HCL type expression such as `map(string)` or
// `object({ id = string, replicas = number })` into a type constraint.
func ParseType(src string) (cty.Type, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "type", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.DynamicPseudoType, fmt.Errorf("invalid type expression %q: %s", src, diags.Error())
	}
	return typeExprToCtyType(expr)
}

// typeExprToCtyType converts an HCL type expression into its cty.Type equivalent.
func typeExprToCtyType(expr hcl.Expression) (cty.Type, error) {
	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("the %s() type constructor requires exactly one argument, got %d", v.Name, len(v.Args))
		}

		switch v.Name {
		case "object":
			objExpr, ok := v.Args[0].(*hclsyntax.ObjectConsExpr)
			if !ok {
				return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", v.Args[0])
			}
			attrTypes := make(map[string]cty.Type, len(objExpr.Items))
			for _, item := range objExpr.Items {
				key := objectKeyName(item.KeyExpr)
				if key == "" {
					return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings")
				}
				attrType, err := typeExprToCtyType(item.ValueExpr)
				if err != nil {
					return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
				}
				attrTypes[key] = attrType
			}
			return cty.Object(attrTypes), nil

		case "tuple":
			listExpr, ok := v.Args[0].(*hclsyntax.TupleConsExpr)
			if !ok {
				return cty.DynamicPseudoType, fmt.Errorf("the argument to tuple() must be a list of types like [string, number], got %T", v.Args[0])
			}
			elemTypes := make([]cty.Type, 0, len(listExpr.Exprs))
			for i, e := range listExpr.Exprs {
				et, err := typeExprToCtyType(e)
				if err != nil {
					return cty.DynamicPseudoType, fmt.Errorf("in tuple element %d: %w", i, err)
				}
				elemTypes = append(elemTypes, et)
			}
			return cty.Tuple(elemTypes), nil
		}

		elementType, err := typeExprToCtyType(v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch name := v.Traversal.RootName(); name {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", name)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// objectKeyName extracts a literal key from an object constructor item.
func objectKeyName(expr hcl.Expression) string {
	keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return ""
	}
	switch k := keyExpr.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(k.Traversal) == 1 {
			return k.Traversal.RootName()
		}
	case *hclsyntax.TemplateExpr:
		if len(k.Parts) == 1 {
			if lit, isLit := k.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString()
			}
		}
	}
	return ""
}

// typeName renders a declared type for messages and listings.
func typeName(t cty.Type) string {
	return t.FriendlyNameForConstraint()
}
