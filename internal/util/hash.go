package util

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// GenerateHash creates a short stable identifier from a text and a timestamp.
// Used for execution-history entry IDs.
func GenerateHash(text string, timestamp int64) string {
	hasher := sha256.New()
	hasher.Write([]byte(text))
	hasher.Write([]byte(time.Unix(0, timestamp).String()))
	return hex.EncodeToString(hasher.Sum(nil))[:16] // Use first 16 chars of the hash
}
