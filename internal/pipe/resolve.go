package pipe

import (
	"github.com/vk/pipesgo/internal/docpath"
	"github.com/vk/pipesgo/internal/document"
	"github.com/zclconf/go-cty/cty"
)

// env is the per-invocation input of resolution.
type env struct {
	config map[string]any
	state  *document.Tree
}

// rule is a Ref validated and frozen at registration.
type rule struct {
	source     Source
	key        string
	path       docpath.Path
	typ        cty.Type
	def        any
	hasDefault bool
	mutable    bool
	mode       indirection
	group      string
	help       string
	notes      string
}

// overrideKey is the config key that may redirect this rule, if any.
func (r *rule) overrideKey() string {
	switch r.mode {
	case indirectKey:
		return r.key + "@"
	case indirectGroup:
		return r.group + "@"
	default:
		return ""
	}
}

// target returns the path the rule resolves to for the given config.
func (r *rule) target(config map[string]any) (docpath.Path, error) {
	okey := r.overrideKey()
	if okey == "" {
		return r.path, nil
	}
	raw, ok := config[okey]
	if !ok {
		return r.path, nil
	}

	if r.mode == indirectKey {
		if _, direct := document.Lookup(config, r.path); direct {
			return docpath.Path{}, newError(ErrConfig, "cannot specify both '%s' and '%s'", r.key, okey)
		}
	}

	s, ok := raw.(string)
	if !ok {
		return docpath.Path{}, newError(ErrConfig, "invalid indirection '%s': not a string: %s", okey, document.Describe(raw))
	}
	p, err := docpath.Parse(s)
	if err != nil {
		return docpath.Path{}, newError(ErrConfig, "invalid indirection '%s': %v", okey, err)
	}

	if r.mode == indirectGroup {
		return r.path.ReplaceHead(p), nil
	}
	return p, nil
}

// resolve produces the value of the rule, or for mutable rules a handle on
// the target node.
func (r *rule) resolve(e *env) (any, *document.Handle, error) {
	p, err := r.target(e.config)
	if err != nil {
		return nil, nil, err
	}

	var v any
	var found bool
	if r.source == StateSource {
		v, found = document.Lookup(e.state.Root(), p)
	} else {
		v, found = document.Lookup(e.config, p)
	}

	if r.mutable {
		if found {
			if err := checkType(r.source, v, r.typ); err != nil {
				return nil, nil, err
			}
		}
		return nil, e.state.Handle(p), nil
	}

	if !found {
		if !r.hasDefault {
			return nil, nil, newError(ErrNodeNotFound, "%s node not found: '%s'", r.source, p)
		}
		v = r.def
	}
	if err := checkType(r.source, v, r.typ); err != nil {
		return nil, nil, err
	}
	return document.Clone(v), nil, nil
}
