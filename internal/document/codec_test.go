package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func sampleTree() map[string]any {
	return map[string]any{
		"pipes": []any{
			map[string]any{"print": map[string]any{"format": "json"}},
			map[string]any{"env_vars": nil},
		},
		"stack": map[string]any{"name": "prod", "replicas": 3, "ratio": 0.5, "enabled": true},
	}
}

func TestFormatFromPath(t *testing.T) {
	testCases := []struct {
		path       string
		format     Format
		compression Compression
		expectErr   bool
	}{
		{path: "state.yaml", format: YAML},
		{path: "state.yml", format: YAML},
		{path: "/tmp/state.json", format: JSON},
		{path: "state.jsonc", format: JSONC},
		{path: "state.hcl", format: HCL},
		{path: "state.cbor.zst", format: CBOR, compression: CompressionZstd},
		{path: "state.json.lz4", format: JSON, compression: CompressionLZ4},
		{path: "state", expectErr: true},
		{path: "state.toml", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			f, compression, err := FormatFromPath(tc.path)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.format, f)
			assert.Equal(t, tc.compression, compression)
		})
	}
}

// TestFileRoundTrip checks that every supported file type reproduces the same
// tree. Numeric representations differ per codec, so trees are compared by
// digest.
func TestFileRoundTrip(t *testing.T) {
	want, err := Digest(sampleTree())
	require.NoError(t, err)

	for _, name := range []string{"s.yaml", "s.json", "s.jsonc", "s.hcl", "s.cbor", "s.yaml.zst", "s.cbor.zst", "s.json.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			require.NoError(t, WriteFile(path, sampleTree()))
			got, err := ReadFile(path)
			require.NoError(t, err)

			gotDigest, err := Digest(got)
			require.NoError(t, err)
			assert.Equal(t, want, gotDigest, "round trip through %s changed the document: %#v", name, got)
		})
	}
}

func TestDecode_JSONCComments(t *testing.T) {
	src := []byte(`{
		// the pipeline
		"pipes": [
			{"print": {}}, /* trailing comma follows */
		],
	}`)

	v, err := Decode(src, JSONC)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"pipes": []any{map[string]any{"print": map[string]any{}}}}, v)
}

func TestDecode_HCLRejectsBlocks(t *testing.T) {
	_, err := Decode([]byte("stack {\n  name = \"x\"\n}\n"), HCL)
	require.Error(t, err)
}

func TestDecode_EmptyDocuments(t *testing.T) {
	for _, f := range []Format{YAML, JSON, CBOR} {
		v, err := Decode(nil, f)
		require.NoError(t, err, "format %s", f)
		assert.Nil(t, v, "format %s", f)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCtyBridge(t *testing.T) {
	val, err := ToCty(map[string]any{"n": 2, "f": 1.5, "l": []any{"a", nil}})
	require.NoError(t, err)
	assert.True(t, val.Type().IsObjectType())
	assert.True(t, val.GetAttr("l").Type().IsTupleType())

	back, err := FromCty(val)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": int64(2), "f": 1.5, "l": []any{"a", nil}}, back)

	_, err = FromCty(cty.UnknownVal(cty.String))
	require.Error(t, err)
}

func TestDigest_StableAcrossEqualTrees(t *testing.T) {
	a, err := Digest(map[string]any{"x": 1, "y": []any{"z"}})
	require.NoError(t, err)
	b, err := Digest(map[string]any{"y": []any{"z"}, "x": int64(1)})
	require.NoError(t, err)
	c, err := Digest(map[string]any{"x": 2, "y": []any{"z"}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
