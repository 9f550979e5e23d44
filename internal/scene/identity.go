package scene

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/roomscan/internal/xr"
)

// CanonicalLen is the length of a canonical identifier string.
const CanonicalLen = 2 * xr.UUIDSize

// Canonicalize renders id as 32 lower-case hex characters with no
// separators. Distinct identifiers always yield distinct strings, so the
// result can be used as a map key.
func Canonicalize(id xr.UUID) string {
	return hex.EncodeToString(id[:])
}

// canonicalOrAbsent returns "" for the all-zero identifier.
func canonicalOrAbsent(id xr.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return Canonicalize(id)
}

// ParseCanonical is the inverse of Canonicalize. It accepts only the exact
// canonical form.
func ParseCanonical(s string) (xr.UUID, error) {
	var id xr.UUID
	if len(s) != CanonicalLen {
		return id, fmt.Errorf("canonical id must be %d characters, got %d", CanonicalLen, len(s))
	}
	if strings.ToLower(s) != s {
		return id, fmt.Errorf("canonical id %q must be lower case", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("canonical id %q: %w", s, err)
	}
	return id, nil
}
