package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell loads apart in logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeTableHash fingerprints a header row plus its records in order.
// Two fetches of an unchanged sheet produce the same hash.
func ComputeTableHash(headers []string, records [][]string) Hash {
	var data strings.Builder
	data.WriteString(strings.Join(headers, "\x1f"))
	for _, rec := range records {
		data.WriteByte('\x1e')
		data.WriteString(strings.Join(rec, "\x1f"))
	}
	return NewHash([]byte(data.String()))
}
