package document

import (
	"encoding/json"
	"fmt"

	"github.com/minio/highwayhash"
)

// hashKey is the fixed highwayhash key. Fingerprints are content identifiers,
// not MACs, so the key only has to be stable.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// CanonicalJSON encodes the document with keys sorted at every level, so two
// documents that are Equal produce the same bytes.
func CanonicalJSON(d *Document) ([]byte, error) {
	b, err := json.Marshal(d.ToMap())
	if err != nil {
		return nil, fmt.Errorf("failed to encode canonical JSON: %w", err)
	}

	return b, nil
}

// Fingerprint returns a 64-bit content hash of the document that does not
// depend on key order.
func Fingerprint(d *Document) (uint64, error) {
	b, err := CanonicalJSON(d)
	if err != nil {
		return 0, err
	}

	return HashBytes(b)
}

// HashBytes returns the 64-bit highwayhash of b.
func HashBytes(b []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, fmt.Errorf("failed to create hasher: %w", err)
	}

	_, _ = h.Write(b)

	return h.Sum64(), nil
}
