// Package checksum fingerprints cheatsheet content so that the index only
// re-parses files whose bytes changed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Changed reports whether data differs from the content fingerprinted by
// known. An empty known value always counts as changed.
func Changed(known string, data []byte) bool {
	return known == "" || known != Sum(data)
}
