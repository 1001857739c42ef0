package pipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/pipesgo/internal/docpath"
	"github.com/vk/pipesgo/internal/document"
)

// Names of the built-in parameters.
const (
	DryRunParam = "dry_run"
	LogParam    = "log"
)

// Func is the body of a pipe.
type Func func(ctx context.Context, args *Args) error

// Definition describes a pipe before registration: its name, body and the
// ordered list of its parameters.
type Definition struct {
	name   string
	help   string
	notes  string
	fn     Func
	params []fieldDecl
}

// Define starts the definition of a pipe.
func Define(name string, fn Func) *Definition {
	return &Definition{name: name, fn: fn}
}

// Help sets the one-line description shown in listings.
func (d *Definition) Help(text string) *Definition {
	d.help = text
	return d
}

// Notes sets additional free-form documentation.
func (d *Definition) Notes(text string) *Definition {
	d.notes = text
	return d
}

// Param declares a built-in parameter (DryRunParam or LogParam).
func (d *Definition) Param(name string) *Definition {
	d.params = append(d.params, fieldDecl{name: name})
	return d
}

// Bind declares a parameter bound to a reference or a context.
func (d *Definition) Bind(name string, b Binding) *Definition {
	d.params = append(d.params, fieldDecl{name: name, binding: b})
	return d
}

type builtin int

const (
	notBuiltin builtin = iota
	builtinDryRun
	builtinLog
)

// field is a compiled parameter or context field. Exactly one of builtin,
// rule and context is set.
type field struct {
	name    string
	builtin builtin
	rule    *rule
	context *compiledContext
}

// compiledContext is a ContextSpec validated and frozen at registration.
type compiledContext struct {
	name   string
	help   string
	fields []*field
	enter  EnterFunc
	exit   ExitFunc
}

// compiler validates definitions. It tracks the contexts being compiled to
// reject self-inclusion.
type compiler struct {
	pipe   string
	active map[*ContextSpec]bool
}

func (c *compiler) errorf(kind error, format string, args ...any) *Error {
	return newError(kind, "pipe '%s': %s", c.pipe, fmt.Sprintf(format, args...))
}

func (c *compiler) params(decls []fieldDecl) ([]*field, error) {
	fields := make([]*field, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, decl := range decls {
		if decl.name == "" {
			return nil, c.errorf(ErrConfig, "parameter name must not be empty")
		}
		if seen[decl.name] {
			return nil, c.errorf(ErrConfig, "duplicate parameter '%s'", decl.name)
		}
		seen[decl.name] = true

		f, err := c.field(decl)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (c *compiler) field(decl fieldDecl) (*field, error) {
	if decl.binding == nil {
		switch decl.name {
		case DryRunParam:
			return &field{name: decl.name, builtin: builtinDryRun}, nil
		case LogParam:
			return &field{name: decl.name, builtin: builtinLog}, nil
		default:
			return nil, c.errorf(ErrConfig, "parameter '%s' has no binding and is not a built-in (%s, %s)", decl.name, DryRunParam, LogParam)
		}
	}
	if decl.name == DryRunParam || decl.name == LogParam {
		return nil, c.errorf(ErrConfig, "parameter '%s' is reserved for the built-in", decl.name)
	}

	switch b := decl.binding.(type) {
	case *Ref:
		r, err := c.rule(b)
		if err != nil {
			return nil, err
		}
		return &field{name: decl.name, rule: r}, nil
	case *ContextSpec:
		cc, err := c.context(b)
		if err != nil {
			return nil, err
		}
		return &field{name: decl.name, context: cc}, nil
	default:
		return nil, c.errorf(ErrConfig, "parameter '%s' has an unsupported binding %T", decl.name, b)
	}
}

func (c *compiler) rule(ref *Ref) (*rule, error) {
	if ref == nil {
		return nil, c.errorf(ErrConfig, "nil reference")
	}
	p, err := docpath.Parse(ref.key)
	if err != nil {
		return nil, c.errorf(ErrConfig, "invalid %s key '%s': %v", ref.source, ref.key, err)
	}

	typ := ref.typ
	if ref.typeExpr != "" {
		if typ, err = ParseType(ref.typeExpr); err != nil {
			return nil, c.errorf(ErrConfig, "%s reference '%s': %v", ref.source, ref.key, err)
		}
	}

	if ref.hasDefault && document.IsContainer(ref.def) {
		return nil, newError(ErrInvalidDefault, "mutable default %s values are not allowed: %s", ref.source, document.Render(ref.def))
	}
	if ref.mutable {
		if ref.source != StateSource {
			return nil, c.errorf(ErrConfig, "config reference '%s' cannot be mutable", ref.key)
		}
		if ref.hasDefault {
			return nil, c.errorf(ErrConfig, "mutable state reference '%s' cannot have a default", ref.key)
		}
	}
	if ref.mode == indirectGroup && (ref.group == "" || strings.ContainsAny(ref.group, ".[]@")) {
		return nil, c.errorf(ErrConfig, "%s reference '%s': invalid indirection group '%s'", ref.source, ref.key, ref.group)
	}

	def, err := document.Normalize(ref.def)
	if err != nil {
		return nil, c.errorf(ErrConfig, "%s reference '%s': %v", ref.source, ref.key, err)
	}

	return &rule{
		source:     ref.source,
		key:        ref.key,
		path:       p,
		typ:        typ,
		def:        def,
		hasDefault: ref.hasDefault,
		mutable:    ref.mutable,
		mode:       ref.mode,
		group:      ref.group,
		help:       ref.help,
		notes:      ref.notes,
	}, nil
}

func (c *compiler) context(spec *ContextSpec) (*compiledContext, error) {
	if spec == nil {
		return nil, c.errorf(ErrConfig, "nil context")
	}
	if c.active[spec] {
		return nil, c.errorf(ErrConfig, "context '%s' includes itself", spec.name)
	}
	c.active[spec] = true
	defer delete(c.active, spec)

	fields, err := c.params(spec.fields)
	if err != nil {
		return nil, err
	}
	return &compiledContext{
		name:   spec.name,
		help:   spec.help,
		fields: fields,
		enter:  spec.enter,
		exit:   spec.exit,
	}, nil
}
