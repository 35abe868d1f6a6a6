package resourceid

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Generate returns a new 16-byte UUIDv7: 48-bit big-endian millisecond
// timestamp, version 7, RFC 4122 variant, and a random tail drawn from
// crypto/rand. Safe for concurrent use.
func Generate() ([]byte, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate uuidv7: %w", err)
	}
	return id[:], nil
}

// GenerateFrom is Generate with an explicit entropy source. r must be safe
// for concurrent use if GenerateFrom is called concurrently.
func GenerateFrom(r io.Reader) ([]byte, error) {
	id, err := uuid.NewV7FromReader(r)
	if err != nil {
		return nil, fmt.Errorf("generate uuidv7: %w", err)
	}
	return id[:], nil
}

// Timestamp returns the millisecond timestamp embedded in a raw UUIDv7.
func Timestamp(raw []byte) (time.Time, error) {
	if len(raw) != BlockSize {
		return time.Time{}, fmt.Errorf("timestamp: got %d bytes: %w", len(raw), ErrInvalidInputLength)
	}
	var ms [8]byte
	copy(ms[2:], raw[:6])
	return time.UnixMilli(int64(binary.BigEndian.Uint64(ms[:]))).UTC(), nil
}
