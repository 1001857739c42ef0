// internal/docpath/parser.go
package docpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex parses a single segment of a path, e.g. `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([^.\[\]]+)(?:\[(\d+)\])?$`)

// Parse creates a Path by parsing its dotted string representation.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("path cannot be empty")
	}

	var p Path
	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return Path{}, fmt.Errorf("path %q contains empty segment", raw)
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return Path{}, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		segment := NewSegment(matches[1])
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				return Path{}, fmt.Errorf("invalid index in segment %q: %w", segmentStr, err)
			}
			segment.Index = index
		}
		p.Segments = append(p.Segments, segment)
	}

	return p, nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// paths that are compile-time constants.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("docpath: %v", err))
	}
	return p
}
