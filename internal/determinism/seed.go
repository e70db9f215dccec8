// Package determinism derives stable seeds so rerunning a review of
// the same diff sends the same seed parameter to the model.
package determinism

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// GenerateSeed creates a deterministic uint64 seed from a review
// identity (revision PHID or local ref) and the diff content. The seed
// is derived from a SHA-256 hash so the same revision and diff always
// produce the same value, and any change to either produces a new one.
// The returned value is masked to fit in a signed int64, which is what
// chat-completion APIs accept for their seed field.
func GenerateSeed(identity, content string) uint64 {
	contentHash := sha256.Sum256([]byte(content))
	input := fmt.Sprintf("%s|%x", identity, contentHash)

	hash := sha256.Sum256([]byte(input))
	seed := binary.BigEndian.Uint64(hash[:8])

	return seed & 0x7FFFFFFFFFFFFFFF
}
