// Package canon provides content-identity for state snapshots: values
// are serialized to RFC 8785 canonical JSON so that equality depends on
// structure alone, never on pointer identity or key order.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Canonical returns the canonical JSON form of v.
func Canonical(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Hash returns a hex digest of the canonical form, or the empty string
// for an unserializable value. Empty never matches anything, so an
// uncomparable snapshot is always treated as changed.
func Hash(v any) string {
	c, err := Canonical(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256([]byte(c))
	return hex.EncodeToString(sum[:])
}
