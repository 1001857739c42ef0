// internal/docpath/types.go
package docpath

// Segment represents a single component of a path, e.g. `name` or `name[index]`.
type Segment struct {
	Key   string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a new path segment without an index.
func NewSegment(key string) Segment {
	return Segment{Key: key, Index: -1}
}

// NewSegmentWithIndex creates a new path segment that includes an index.
func NewSegmentWithIndex(key string, index int) Segment {
	return Segment{Key: key, Index: index}
}

// HasIndex returns true if the segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Path is the structured representation of a document node address.
type Path struct {
	Segments []Segment
}
