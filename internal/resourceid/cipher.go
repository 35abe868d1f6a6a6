package resourceid

import (
	"crypto/aes"
	"fmt"
)

// BlockSize is the size of a raw identifier and of one AES block.
const BlockSize = aes.BlockSize

// EncryptBlock applies AES-256 to exactly one 16-byte block. There is no
// chaining, IV, or padding: equal inputs under equal keys give equal outputs.
func EncryptBlock(key [KeySize]byte, block []byte) ([]byte, error) {
	return applyBlock(key, block, true)
}

// DecryptBlock inverts EncryptBlock for the same key.
func DecryptBlock(key [KeySize]byte, block []byte) ([]byte, error) {
	return applyBlock(key, block, false)
}

func applyBlock(key [KeySize]byte, block []byte, encrypt bool) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("block of %d bytes: %w", len(block), ErrInvalidLength)
	}
	c, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, BlockSize)
	if encrypt {
		c.Encrypt(out, block)
	} else {
		c.Decrypt(out, block)
	}
	return out, nil
}
