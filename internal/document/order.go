package document

import (
	"bytes"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// SequenceKeyOrder returns, for each element of the top-level sequence
// stored under key, the keys of that element in source order. Decoded trees
// are Go maps and lose this order. Elements that are not mappings get a nil
// entry.
//
// Only YAML, JSON and JSONC sources keep key order; for other formats, or
// when the layout does not match, it returns nil.
func SequenceKeyOrder(data []byte, f Format, key string) [][]string {
	switch f {
	case YAML:
	case JSON, JSONC:
		data = jsonc.ToJSON(data)
	default:
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil
	}

	var seq *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			seq = resolveAlias(root.Content[i+1])
		}
	}
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}

	out := make([][]string, len(seq.Content))
	for i, item := range seq.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.MappingNode {
			continue
		}
		keys := make([]string, 0, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			keys = append(keys, item.Content[j].Value)
		}
		out[i] = keys
	}
	return out
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
