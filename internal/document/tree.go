package document

import (
	"fmt"

	"github.com/vk/pipesgo/internal/docpath"
)

// Lookup walks root along p and returns the node found there. A key that is
// present with a nil value is found.
func Lookup(root any, p docpath.Path) (any, bool) {
	cur := root
	for _, seg := range p.Segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[seg.Key]
		if !ok {
			return nil, false
		}
		if seg.HasIndex() {
			list, ok := next.([]any)
			if !ok || seg.Index >= len(list) {
				return nil, false
			}
			next = list[seg.Index]
		}
		cur = next
	}
	return cur, true
}

// Tree is a mutable document. Set is its only mutation entry point.
type Tree struct {
	root map[string]any
}

// NewTree wraps root. Writes land in root itself, so the caller observes them.
func NewTree(root map[string]any) *Tree {
	return &Tree{root: root}
}

// Root returns the underlying mapping.
func (t *Tree) Root() map[string]any {
	return t.root
}

// Lookup returns a deep copy of the node at p.
func (t *Tree) Lookup(p docpath.Path) (any, bool) {
	v, ok := Lookup(t.root, p)
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// Set stores v at p, creating intermediate mappings as needed. Indexed
// segments must address existing sequence elements.
func (t *Tree) Set(p docpath.Path, v any) error {
	if t.root == nil {
		return fmt.Errorf("cannot set '%s': document is not initialized", p)
	}
	if p.IsZero() {
		return fmt.Errorf("cannot set the document root")
	}
	value, err := Normalize(v)
	if err != nil {
		return fmt.Errorf("cannot set '%s': %w", p, err)
	}

	parent, last := p.Parent()
	container := t.root
	for i, seg := range parent.Segments {
		next, exists := container[seg.Key]
		if seg.HasIndex() {
			list, ok := next.([]any)
			if !ok || seg.Index >= len(list) {
				return fmt.Errorf("cannot set '%s': no element at '%s'", p, prefix(parent, i))
			}
			next = list[seg.Index]
			exists = true
		}
		if !exists || next == nil {
			created := make(map[string]any)
			if seg.HasIndex() {
				container[seg.Key].([]any)[seg.Index] = created
			} else {
				container[seg.Key] = created
			}
			container = created
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot set '%s': '%s' is not a mapping", p, prefix(parent, i))
		}
		container = m
	}

	if last.HasIndex() {
		list, ok := container[last.Key].([]any)
		if !ok || last.Index >= len(list) {
			return fmt.Errorf("cannot set '%s': no element at '%s'", p, p)
		}
		list[last.Index] = value
		return nil
	}
	container[last.Key] = value
	return nil
}

// Handle returns an assignable handle on the node at p.
func (t *Tree) Handle(p docpath.Path) *Handle {
	return &Handle{tree: t, path: p}
}

func prefix(p docpath.Path, i int) docpath.Path {
	return docpath.Path{Segments: p.Segments[:i+1]}
}

// Handle is an assignable reference to one node of a Tree. Reads are deep
// copies; writes go through Tree.Set and are visible to every later reader.
type Handle struct {
	tree *Tree
	path docpath.Path
}

// Path returns the path the handle writes to.
func (h *Handle) Path() docpath.Path {
	return h.path
}

// Get returns a copy of the current value and whether the node exists.
func (h *Handle) Get() (any, bool) {
	return h.tree.Lookup(h.path)
}

// Set replaces the node's value.
func (h *Handle) Set(v any) error {
	return h.tree.Set(h.path, v)
}

// Update reads the current value, passes it to fn and stores the result.
// fn receives nil when the node does not exist yet.
func (h *Handle) Update(fn func(current any) (any, error)) error {
	current, _ := h.Get()
	next, err := fn(current)
	if err != nil {
		return err
	}
	return h.Set(next)
}
