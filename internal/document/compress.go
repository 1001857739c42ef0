package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the compression wrapped around a document file.
// It is selected by a trailing suffix, e.g. `state.cbor.zst`.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

var compressionSuffixes = map[string]Compression{
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("document: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("document: zstd decoder initialization failed: " + err.Error())
	}
}

// splitCompression strips a known compression suffix from path.
func splitCompression(path string) (string, Compression) {
	for suffix, c := range compressionSuffixes {
		if strings.HasSuffix(path, suffix) {
			return strings.TrimSuffix(path, suffix), c
		}
	}
	return path, CompressionNone
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		// Frame format: unlike raw blocks it records its own size.
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported compression %q", c)
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported compression %q", c)
}
