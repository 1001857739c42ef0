package pipe

import (
	"github.com/zclconf/go-cty/cty"
)

// Source selects the document a reference reads from.
type Source int

const (
	ConfigSource Source = iota
	StateSource
)

// String returns the lowercase document name used in messages.
func (s Source) String() string {
	if s == StateSource {
		return "state"
	}
	return "config"
}

// Binding is anything a parameter or context field can be bound to: a *Ref
// or a *ContextSpec.
type Binding interface {
	binding()
}

type indirection int

const (
	// indirectKey lets the config document redirect the reference with a
	// top-level `<key>@` entry holding a replacement path.
	indirectKey indirection = iota
	// indirectNone resolves the declared key only.
	indirectNone
	// indirectGroup lets a shared `<group>@` entry replace the first
	// segment of the declared key.
	indirectGroup
)

// Ref is a reference to a node of the config or state document. It is
// built with Config or State and refined with chained setters.
type Ref struct {
	source     Source
	key        string
	typ        cty.Type
	typeExpr   string
	def        any
	hasDefault bool
	mutable    bool
	mode       indirection
	group      string
	help       string
	notes      string
}

func (*Ref) binding() {}

// Config returns a reference to key in the config document.
func Config(key string) *Ref {
	return &Ref{source: ConfigSource, key: key, typ: cty.DynamicPseudoType}
}

// State returns a reference to key in the state document.
func State(key string) *Ref {
	return &Ref{source: StateSource, key: key, typ: cty.DynamicPseudoType}
}

// Type sets the declared type. The default is Any.
func (r *Ref) Type(t cty.Type) *Ref {
	r.typ = t
	r.typeExpr = ""
	return r
}

// TypeExpr declares the type as an HCL type expression, parsed at
// registration.
func (r *Ref) TypeExpr(expr string) *Ref {
	r.typeExpr = expr
	return r
}

// Default sets the value used when the node is absent. Only scalar values
// and nil are accepted.
func (r *Ref) Default(v any) *Ref {
	r.def = v
	r.hasDefault = true
	return r
}

// Mutable makes a state reference assignable: the pipe receives a handle
// instead of a value, and the node does not need to exist.
func (r *Ref) Mutable() *Ref {
	r.mutable = true
	return r
}

// Direct disables `<key>@` indirection.
func (r *Ref) Direct() *Ref {
	r.mode = indirectNone
	r.group = ""
	return r
}

// IndirectVia shares one `<group>@` override among several references. When
// the config document holds it, its value replaces the first segment of the
// declared key.
func (r *Ref) IndirectVia(group string) *Ref {
	r.mode = indirectGroup
	r.group = group
	return r
}

// Help sets the one-line description shown in listings.
func (r *Ref) Help(text string) *Ref {
	r.help = text
	return r
}

// Notes sets additional free-form documentation.
func (r *Ref) Notes(text string) *Ref {
	r.notes = text
	return r
}
