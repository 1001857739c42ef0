package document

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest returns the hex BLAKE3 digest of the deterministic CBOR encoding of
// v. Equal trees have equal digests regardless of map iteration order.
func Digest(v any) (string, error) {
	data, err := cborEnc.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding document for digest: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
