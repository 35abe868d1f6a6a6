// Package domain id.go contains functions to validate external waitlist IDs
package domain

import (
	"errors"

	"github.com/haukened/waitlist/internal/resourceid"
)

// EntryPrefix is the default resource prefix for waitlist entries.
const EntryPrefix = "wait"

// EntryID is the public identifier of a waitlist entry, e.g. "wait_3YQ...".
// The raw UUIDv7 behind it never leaves the storage layer.
type EntryID string

// ParseEntryID checks the framing of s against prefix without decrypting it.
// It enforces:
// - "<prefix>_" leading segment
// - a non-empty Base58 body of at most resourceid.MaxEncodedLen chars
// Returns ErrInvalidID on failure.
func ParseEntryID(prefix, s string) (EntryID, error) {
	p, body, err := resourceid.Parse(s)
	if err != nil || p != prefix || len(body) > resourceid.MaxEncodedLen || !isBase58(body) {
		return "", ErrInvalidID
	}
	return EntryID(s), nil
}

// String returns the string form of the EntryID.
func (id EntryID) String() string { return string(id) }

// IsCodecError reports whether err came from decoding a malformed or foreign id.
func IsCodecError(err error) bool {
	return errors.Is(err, resourceid.ErrPrefixMismatch) ||
		errors.Is(err, resourceid.ErrMalformedEncoding) ||
		errors.Is(err, resourceid.ErrInvalidInputLength)
}

// isBase58 performs alphabet validation without allocating errors.
func isBase58(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '1' && c <= '9':
		case c >= 'A' && c <= 'H', c >= 'J' && c <= 'N', c >= 'P' && c <= 'Z':
		case c >= 'a' && c <= 'k', c >= 'm' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
