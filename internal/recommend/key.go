// Package recommend memoizes the cheap, high-frequency generation path
// behind a content-addressed cache with a fixed TTL.
package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Context is the set of named fields describing one recommendation request.
// Field insertion order carries no meaning.
type Context map[string]any

// Fingerprint serializes a context canonically: fields sorted by name,
// absent values normalized to JSON null, values encoded with encoding/json
// (which itself orders nested map keys). Two logically identical contexts
// always fingerprint identically.
func Fingerprint(c Context) string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		value := c[name]
		encoded, err := json.Marshal(value)
		if err != nil {
			// Unencodable values degrade to null rather than poisoning the
			// key with a non-deterministic representation.
			encoded = []byte("null")
		}
		parts = append(parts, name+"="+string(encoded))
	}
	return strings.Join(parts, "&")
}

// DeriveKey returns the stable cache key for an owner and context. It is a
// pure function: no clock, no randomness, no I/O.
func DeriveKey(ownerID string, c Context) string {
	sum := sha256.Sum256([]byte(Fingerprint(c)))
	return fmt.Sprintf("rec:%s:%s", ownerID, hex.EncodeToString(sum[:]))
}
