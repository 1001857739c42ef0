package pipe

import (
	"github.com/vk/pipesgo/internal/document"
)

// ParamInfo describes a declared parameter or context field.
type ParamInfo struct {
	Name       string
	Kind       string // "built-in", "config", "state" or "context"
	Key        string
	Type       string
	Default    string
	HasDefault bool
	Mutable    bool
	Override   string // config key that can redirect the reference, if any
	Help       string
	Notes      string
	Fields     []ParamInfo
}

// Params describes the declared parameters in order.
func (p *Pipe) Params() []ParamInfo {
	return describeFields(p.params)
}

func describeFields(fields []*field) []ParamInfo {
	out := make([]ParamInfo, 0, len(fields))
	for _, f := range fields {
		info := ParamInfo{Name: f.name}
		switch {
		case f.builtin == builtinDryRun:
			info.Kind, info.Type = "built-in", "bool"
		case f.builtin == builtinLog:
			info.Kind, info.Type = "built-in", "logger"
		case f.rule != nil:
			r := f.rule
			info.Kind = r.source.String()
			info.Key = r.key
			info.Type = typeName(r.typ)
			info.HasDefault = r.hasDefault
			if r.hasDefault {
				info.Default = document.Render(r.def)
			}
			info.Mutable = r.mutable
			info.Override = r.overrideKey()
			info.Help = r.help
			info.Notes = r.notes
		case f.context != nil:
			info.Kind = "context"
			info.Key = f.context.name
			info.Help = f.context.help
			info.Fields = describeFields(f.context.fields)
		}
		out = append(out, info)
	}
	return out
}
