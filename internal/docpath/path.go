// internal/docpath/path.go
package docpath

import (
	"reflect"
	"strconv"
	"strings"
)

// String serializes the Path into its dotted representation.
func (p Path) String() string {
	var sb strings.Builder
	for i, segment := range p.Segments {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Key)
		if segment.HasIndex() {
			sb.WriteRune('[')
			sb.WriteString(strconv.Itoa(segment.Index))
			sb.WriteRune(']')
		}
	}
	return sb.String()
}

// Equal checks for deep equality between two paths.
func (p Path) Equal(other Path) bool {
	if len(p.Segments) == 0 && len(other.Segments) == 0 {
		return true
	}
	return reflect.DeepEqual(p.Segments, other.Segments)
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.Segments)
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool {
	return len(p.Segments) == 0
}

// Parent returns the path without its last segment, and the last segment.
func (p Path) Parent() (Path, Segment) {
	n := len(p.Segments)
	if n == 0 {
		return Path{}, Segment{}
	}
	parent := Path{Segments: append([]Segment(nil), p.Segments[:n-1]...)}
	return parent, p.Segments[n-1]
}

// ReplaceHead returns a new path where the first segment of p is replaced by
// all segments of head. The receiver is not modified.
func (p Path) ReplaceHead(head Path) Path {
	if len(p.Segments) == 0 {
		return head
	}
	out := make([]Segment, 0, len(head.Segments)+len(p.Segments)-1)
	out = append(out, head.Segments...)
	out = append(out, p.Segments[1:]...)
	return Path{Segments: out}
}
