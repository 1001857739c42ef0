package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

const (
	YAML  Format = "yaml"
	JSON  Format = "json"
	JSONC Format = "jsonc"
	HCL   Format = "hcl"
	CBOR  Format = "cbor"
)

var (
	// cborEnc uses Core Deterministic Encoding so equal trees produce
	// identical bytes; Digest relies on it.
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("document: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("document: CBOR decoder initialization failed: " + err.Error())
	}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case YAML, JSON, JSONC, HCL, CBOR:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown document format %q", name)
}

// FormatFromPath derives the format and the compression from a file name.
func FormatFromPath(path string) (Format, Compression, error) {
	base, c := splitCompression(path)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" {
		return "", c, fmt.Errorf("cannot determine document format of %s: no extension", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", c, fmt.Errorf("cannot determine document format of %s: %w", path, err)
	}
	return f, c, nil
}

// Decode parses data in the given format into a document tree.
func Decode(data []byte, f Format) (any, error) {
	var (
		out any
		err error
	)
	switch f {
	case YAML:
		err = yaml.Unmarshal(data, &out)
	case JSON, JSONC:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		err = decodeJSON(jsonc.ToJSON(data), &out)
	case HCL:
		out, err = decodeHCL(data)
	case CBOR:
		if len(data) == 0 {
			return nil, nil
		}
		err = cborDec.Unmarshal(data, &out)
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s document: %w", f, err)
	}
	return Normalize(out)
}

// Encode serializes a document tree in the given format.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case YAML:
		return yaml.Marshal(v)
	case JSON, JSONC:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case HCL:
		return encodeHCL(v)
	case CBOR:
		return cborEnc.Marshal(v)
	}
	return nil, fmt.Errorf("unknown document format %q", f)
}

// ReadFile loads a document, choosing the decoder from the file name.
func ReadFile(path string) (any, error) {
	data, f, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	v, err := Decode(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadSource returns the decompressed bytes of a document file and its
// format, without decoding them.
func ReadSource(path string) ([]byte, Format, error) {
	f, c, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	data, err = decompress(data, c)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return data, f, nil
}

// WriteFile stores a document, choosing the encoder from the file name.
func WriteFile(path string, v any) error {
	f, c, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(v, f)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data, err = compress(data, c)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func decodeJSON(data []byte, out *any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

// decodeHCL reads a body made only of attributes. Blocks are rejected.
func decodeHCL(data []byte) (any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "document.hcl")
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		v, err := FromCty(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func encodeHCL(v any) ([]byte, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("HCL documents must be mappings, got %s", TypeName(v))
	}
	file := hclwrite.NewEmptyFile()
	body := file.Body()
	for _, k := range sortedKeys(root) {
		val, err := ToCty(root[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		body.SetAttributeValue(k, val)
	}
	return file.Bytes(), nil
}
