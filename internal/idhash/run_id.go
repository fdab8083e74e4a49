package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(token|started_at_unix_ms)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(token string, startedAtMs int64) string {
	data := fmt.Sprintf("%s|%d", token, startedAtMs)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
