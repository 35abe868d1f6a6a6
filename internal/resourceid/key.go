package resourceid

import "crypto/sha256"

// KeySize is the size in bytes of a derived per-prefix key (AES-256).
const KeySize = 32

// keyLabel separates resource id keys from any other use of the same secret.
const keyLabel = "resource-id"

// keyDelimiter never appears in a valid prefix.
const keyDelimiter = ":"

// KeyDeriver maps a prefix and the process secret to a key. DeriveKey is the
// production implementation; tests may inject fixed keys via WithKeyDeriver.
type KeyDeriver func(prefix string, secret []byte) [KeySize]byte

// DeriveKey returns SHA-256("resource-id" ":" prefix ":" secret). The result
// is a pure function of its inputs: no salt, no nonce, nothing cached.
func DeriveKey(prefix string, secret []byte) [KeySize]byte {
	h := sha256.New()
	h.Write([]byte(keyLabel))
	h.Write([]byte(keyDelimiter))
	h.Write([]byte(prefix))
	h.Write([]byte(keyDelimiter))
	h.Write(secret)
	var key [KeySize]byte
	h.Sum(key[:0])
	return key
}
