package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash derives the deduplication key for an article from its
// canonical link. Two entries with the same link always produce the same
// hash, which the articles table enforces with a unique constraint.
func ContentHash(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])
}
