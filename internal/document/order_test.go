package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSequenceKeyOrder(t *testing.T) {
	testCases := []struct {
		name   string
		format Format
		src    string
		want   [][]string
	}{
		{
			name:   "yaml keeps source order",
			format: YAML,
			src:    "pipes:\n  - {zeta: 1, alpha: 2}\n  - print:\n  - 3\n",
			want:   [][]string{{"zeta", "alpha"}, {"print"}, nil},
		},
		{
			name:   "json",
			format: JSON,
			src:    `{"other": 1, "pipes": [{"b": null, "a": null}]}`,
			want:   [][]string{{"b", "a"}},
		},
		{
			name:   "jsonc with comments",
			format: JSONC,
			src:    "{\n  // plan\n  \"pipes\": [{\"y\": {}, \"x\": {},}],\n}",
			want:   [][]string{{"y", "x"}},
		},
		{name: "unordered format", format: CBOR, src: "irrelevant"},
		{name: "no sequence", format: YAML, src: "pipes: {}\n"},
		{name: "empty", format: YAML, src: ""},
		{name: "not yaml", format: YAML, src: "pipes: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SequenceKeyOrder([]byte(tc.src), tc.format, "pipes")

			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("SequenceKeyOrder() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
