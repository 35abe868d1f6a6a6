package resourceid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnAdapter(t *testing.T) {
	col, err := NewColumn(newTestCodec(t, "s3cr3t"), "wait")
	require.NoError(t, err)
	assert.Equal(t, "wait", col.Prefix())

	id, err := col.Default()
	require.NoError(t, err)
	assert.Regexp(t, externalFormat, id)

	raw, err := col.ToStorage(id)
	require.NoError(t, err)
	assert.Len(t, raw, BlockSize)

	back, err := col.FromStorage(raw)
	require.NoError(t, err)
	assert.Equal(t, id, back)

	_, err = col.ToStorage("user_" + id[len("wait_"):])
	assert.ErrorIs(t, err, ErrPrefixMismatch)
	_, err = col.FromStorage(raw[:8])
	assert.ErrorIs(t, err, ErrInvalidInputLength)
}

func TestNewColumnInvalidPrefix(t *testing.T) {
	_, err := NewColumn(newTestCodec(t, "s3cr3t"), "Wait")
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}
