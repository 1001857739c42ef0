// Package plan extracts the ordered list of pipe invocations from a state
// document. The list lives under the top-level `pipes` key:
//
//	pipes:
//	  - deployments.create:
//	      name: my-deployment
//	  - print: ~
//
// Each element is a single-key mapping from pipe name to that invocation's
// config document.
package plan

import (
	"sort"
	"strings"

	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
)

// Key is the state key holding the plan.
const Key = "pipes"

// Option tunes Extract.
type Option func(*options)

type options struct {
	keyOrder [][]string
}

// WithKeyOrder supplies, per plan element, the element's keys in source
// order (see document.SequenceKeyOrder). Decoded mappings carry no order,
// so without it multiple pipe names are reported sorted.
func WithKeyOrder(order [][]string) Option {
	return func(o *options) {
		o.keyOrder = order
	}
}

// Entry is one pipe invocation.
type Entry struct {
	Name   string
	Config map[string]any
}

// Extract returns the invocations listed in state, in order. A nil state, a
// missing or null `pipes` key, and an empty list all yield no entries. A
// null config becomes an empty mapping.
func Extract(state any, opts ...Option) ([]Entry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if state == nil {
		return nil, nil
	}
	root, ok := state.(map[string]any)
	if !ok {
		return nil, pipe.ConfigErrorf("invalid state: not a mapping: %s", document.Describe(state))
	}

	raw := root[Key]
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, pipe.ConfigErrorf("invalid pipes configuration: not a sequence: %s", document.Describe(raw))
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		var order []string
		if i < len(o.keyOrder) {
			order = o.keyOrder[i]
		}
		entry, err := extractEntry(item, order)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func extractEntry(item any, order []string) (Entry, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Entry{}, pipe.ConfigErrorf("invalid pipe configuration: not a mapping: %s", document.Describe(item))
	}
	switch len(m) {
	case 0:
		return Entry{}, pipe.ConfigErrorf("invalid pipe configuration: missing pipe name: %s", document.Describe(item))
	case 1:
	default:
		return Entry{}, pipe.ConfigErrorf("invalid pipe configuration: multiple pipe names: %s", strings.Join(entryNames(m, order), ", "))
	}

	var name string
	var raw any
	for name, raw = range m {
	}
	if raw == nil {
		return Entry{Name: name, Config: map[string]any{}}, nil
	}
	config, ok := raw.(map[string]any)
	if !ok {
		return Entry{}, pipe.ConfigErrorf("invalid pipe configuration: not a mapping: %s", document.Describe(raw))
	}
	return Entry{Name: name, Config: config}, nil
}

// entryNames lists the keys of m in source order when order describes m,
// sorted otherwise.
func entryNames(m map[string]any, order []string) []string {
	if len(order) == len(m) {
		matches := true
		for _, name := range order {
			if _, ok := m[name]; !ok {
				matches = false
				break
			}
		}
		if matches {
			return order
		}
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
