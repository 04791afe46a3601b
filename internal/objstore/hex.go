// Package objstore implements the content-addressed object repository:
// digest encoding, the digest-to-path mapping, and the compressed,
// typed object store itself.
package objstore

import (
	"encoding/hex"
	"fmt"
)

// DigestSize is the length in bytes of a raw digest (SHA-1).
const DigestSize = 20

// Digest is a raw 20-byte object identifier.
type Digest [DigestSize]byte

// ToHex renders d as 40 lower-case hex characters.
func (d Digest) ToHex() string {
	return hex.EncodeToString(d[:])
}

// String satisfies fmt.Stringer so a Digest prints as hex.
func (d Digest) String() string {
	return d.ToHex()
}

// IsZero reports whether d is the all-zero digest (never a real object,
// used as a sentinel for "no parent"/"no tree").
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// FromHex parses a 40-character lower- or upper-case hex string into a
// Digest. Any non-hex character, or a string of the wrong length, is
// rejected.
func FromHex(s string) (Digest, error) {
	var d Digest
	if len(s) != DigestSize*2 {
		return d, fmt.Errorf("objstore: invalid hex digest length %d, want %d", len(s), DigestSize*2)
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("objstore: invalid hex digest %q: %w", s, err)
	}
	copy(d[:], decoded)
	return d, nil
}
