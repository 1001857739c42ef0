// internal/docpath/path_test.go
package docpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_RoundTrip(t *testing.T) {
	for _, raw := range []string{"a.b.c", "stack.nodes[3].name", "user@", "feature-states"} {
		t.Run(raw, func(t *testing.T) {
			p, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestPath_Equal(t *testing.T) {
	assert.True(t, MustParse("a.b[0]").Equal(MustParse("a.b[0]")))
	assert.False(t, MustParse("a.b[0]").Equal(MustParse("a.b[1]")))
	assert.False(t, MustParse("a.b").Equal(MustParse("a.c")))
	assert.True(t, Path{}.Equal(Path{Segments: []Segment{}}))
}

func TestPath_Parent(t *testing.T) {
	parent, last := MustParse("user.profile.name").Parent()
	assert.Equal(t, "user.profile", parent.String())
	assert.Equal(t, NewSegment("name"), last)

	parent, last = MustParse("name").Parent()
	assert.True(t, parent.IsZero())
	assert.Equal(t, "name", last.Key)
}

func TestPath_ReplaceHead(t *testing.T) {
	original := MustParse("stack.credentials.username")

	replaced := original.ReplaceHead(MustParse("prod.stack"))

	assert.Equal(t, "prod.stack.credentials.username", replaced.String())
	assert.Equal(t, "stack.credentials.username", original.String(), "receiver must not be modified")
	assert.Equal(t, "username", MustParse("name").ReplaceHead(MustParse("username")).String())
}
