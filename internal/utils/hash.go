package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FileHash fingerprints uploaded bytes for duplicate detection.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NormalizeSubject folds a subject name so "Maths " and "maths" file
// under the same key.
func NormalizeSubject(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
