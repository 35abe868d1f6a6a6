package resourceid

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLayout(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Millisecond)
	raw, err := Generate()
	require.NoError(t, err)
	after := time.Now().UTC()

	require.Len(t, raw, BlockSize)
	assert.Equal(t, byte(0x70), raw[6]&0xf0, "version nibble")
	assert.Equal(t, byte(0x80), raw[8]&0xc0, "variant bits")

	ts, err := Timestamp(raw)
	require.NoError(t, err)
	assert.False(t, ts.Before(before), "timestamp %v before %v", ts, before)
	// the generator may run slightly ahead of the wall clock to stay monotonic
	assert.False(t, ts.After(after.Add(time.Second)), "timestamp %v after %v", ts, after)
}

func TestGenerateSortsByTime(t *testing.T) {
	first, err := Generate()
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := Generate()
	require.NoError(t, err)
	assert.Equal(t, -1, bytes.Compare(first, second))
}

func TestGenerateFromReaderError(t *testing.T) {
	_, err := GenerateFrom(errReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestGenerateFromReader(t *testing.T) {
	raw, err := GenerateFrom(rand.Reader)
	require.NoError(t, err)
	assert.Len(t, raw, BlockSize)
}

func TestTimestampInvalidLength(t *testing.T) {
	_, err := Timestamp(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidInputLength)
}

var errBoom = errors.New("boom")

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errBoom }
