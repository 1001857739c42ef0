package pipe

import (
	"context"
	"fmt"

	"github.com/vk/pipesgo/internal/document"
)

// EnterFunc acquires the resource of a context. Returning an error aborts
// the invocation; contexts acquired before it are released.
type EnterFunc func(ctx context.Context, c *Context) error

// ExitFunc releases the resource of a context. cause is the body's error,
// nil on success.
type ExitFunc func(ctx context.Context, c *Context, cause error) error

type fieldDecl struct {
	name    string
	binding Binding
}

// ContextSpec declares a context: an ordered group of bindings resolved
// together, with optional hooks scoping a resource to one invocation.
type ContextSpec struct {
	name   string
	help   string
	fields []fieldDecl
	enter  EnterFunc
	exit   ExitFunc
}

func (*ContextSpec) binding() {}

// NewContext starts the declaration of a context.
func NewContext(name string) *ContextSpec {
	return &ContextSpec{name: name}
}

// Name returns the declared name of the context.
func (s *ContextSpec) Name() string {
	return s.name
}

// Field appends a binding. Fields resolve in the order they are added.
func (s *ContextSpec) Field(name string, b Binding) *ContextSpec {
	s.fields = append(s.fields, fieldDecl{name: name, binding: b})
	return s
}

// Help sets the one-line description shown in listings.
func (s *ContextSpec) Help(text string) *ContextSpec {
	s.help = text
	return s
}

// OnEnter sets the acquisition hook.
func (s *ContextSpec) OnEnter(fn EnterFunc) *ContextSpec {
	s.enter = fn
	return s
}

// OnExit sets the release hook.
func (s *ContextSpec) OnExit(fn ExitFunc) *ContextSpec {
	s.exit = fn
	return s
}

// Context is a bound context: the resolved values of its fields, handles
// for its mutable fields and its bound sub-contexts. The parameters of a
// pipe form the root context of an invocation (see Args).
type Context struct {
	name     string
	spec     *compiledContext
	values   map[string]any
	handles  map[string]*document.Handle
	children map[string]*Context
	order    []string
	resource any
}

func newBoundContext(name string, spec *compiledContext) *Context {
	return &Context{
		name:     name,
		spec:     spec,
		values:   make(map[string]any),
		handles:  make(map[string]*document.Handle),
		children: make(map[string]*Context),
	}
}

// Name returns the declared name of the context.
func (c *Context) Name() string {
	return c.name
}

// Has reports whether the context has a field with the given name.
func (c *Context) Has(name string) bool {
	if _, ok := c.values[name]; ok {
		return true
	}
	if _, ok := c.handles[name]; ok {
		return true
	}
	_, ok := c.children[name]
	return ok
}

// Get returns the value of a field. Mutable fields return a copy of the
// current state node, or nil when it does not exist yet. Sub-contexts are
// returned as *Context. Unknown names panic.
func (c *Context) Get(name string) any {
	if v, ok := c.values[name]; ok {
		return v
	}
	if h, ok := c.handles[name]; ok {
		v, _ := h.Get()
		return v
	}
	if child, ok := c.children[name]; ok {
		return child
	}
	panic(fmt.Sprintf("pipe: context '%s' has no field '%s'", c.name, name))
}

// GetString returns a string field, or "" when it is null or not a string.
func (c *Context) GetString(name string) string {
	s, _ := c.Get(name).(string)
	return s
}

// GetBool returns a bool field, or false when it is null or not a bool.
func (c *Context) GetBool(name string) bool {
	b, _ := c.Get(name).(bool)
	return b
}

// GetNumber returns a numeric field as float64, or 0 when it is null or not a
// number.
func (c *Context) GetNumber(name string) float64 {
	f, ok := document.ToFloat(c.Get(name))
	if !ok {
		return 0
	}
	return f
}

// GetMap returns a mapping field, or nil.
func (c *Context) GetMap(name string) map[string]any {
	m, _ := c.Get(name).(map[string]any)
	return m
}

// GetList returns a sequence field, or nil.
func (c *Context) GetList(name string) []any {
	l, _ := c.Get(name).([]any)
	return l
}

// Sub returns a bound sub-context. Unknown names panic.
func (c *Context) Sub(name string) *Context {
	child, ok := c.children[name]
	if !ok {
		panic(fmt.Sprintf("pipe: context '%s' has no sub-context '%s'", c.name, name))
	}
	return child
}

// Handle returns the handle of a mutable field, or nil.
func (c *Context) Handle(name string) *document.Handle {
	return c.handles[name]
}

// Set writes v through a mutable field into the state document. Every other
// field is read-only.
func (c *Context) Set(name string, v any) error {
	h, ok := c.handles[name]
	if !ok {
		return newError(ErrImmutable, "can't set attribute '%s'", name)
	}
	return h.Set(v)
}

// SetResource stashes the resource scoped to this context, typically from
// OnEnter.
func (c *Context) SetResource(r any) {
	c.resource = r
}

// Resource returns the resource stashed by SetResource.
func (c *Context) Resource() any {
	return c.resource
}

// subContexts returns the bound sub-contexts in declaration order.
func (c *Context) subContexts() []*Context {
	out := make([]*Context, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.children[name])
	}
	return out
}
