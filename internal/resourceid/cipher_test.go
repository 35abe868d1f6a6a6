package resourceid

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex %q: %v", s, err)
	}
	return b
}

// FIPS-197 Appendix C.3 (AES-256).
func TestEncryptBlockKnownAnswer(t *testing.T) {
	var key [KeySize]byte
	copy(key[:], mustHex(t, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"))
	pt := mustHex(t, "00112233445566778899aabbccddeeff")
	want := mustHex(t, "8ea2b7ca516745bfeafc49904b496089")

	got, err := EncryptBlock(key, pt)
	if err != nil {
		t.Fatalf("EncryptBlock: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("ciphertext %x, want %x", got, want)
	}
	back, err := DecryptBlock(key, got)
	if err != nil {
		t.Fatalf("DecryptBlock: %v", err)
	}
	if !bytes.Equal(back, pt) {
		t.Fatalf("plaintext %x, want %x", back, pt)
	}
}

func TestBlockInvalidLength(t *testing.T) {
	var key [KeySize]byte
	for _, n := range []int{0, 1, 15, 17, 32} {
		if _, err := EncryptBlock(key, make([]byte, n)); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("EncryptBlock len %d: expected ErrInvalidLength, got %v", n, err)
		}
		if _, err := DecryptBlock(key, make([]byte, n)); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("DecryptBlock len %d: expected ErrInvalidLength, got %v", n, err)
		}
	}
}

func TestBlockBoundaryPatterns(t *testing.T) {
	patterns := map[string][]byte{
		"zeros":     bytes.Repeat([]byte{0x00}, BlockSize),
		"ones":      bytes.Repeat([]byte{0xff}, BlockSize),
		"alt55":     bytes.Repeat([]byte{0x55}, BlockSize),
		"altaa":     bytes.Repeat([]byte{0xaa}, BlockSize),
		"ascending": {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		"firstbit":  append([]byte{0x80}, make([]byte, BlockSize-1)...),
		"lastbit":   append(make([]byte, BlockSize-1), 0x01),
	}
	keys := [][KeySize]byte{{}, DeriveKey("user", []byte("s3cr3t"))}
	for i := range keys[0] {
		keys[0][i] = 0xff
	}
	for name, p := range patterns {
		for _, k := range keys {
			ct, err := EncryptBlock(k, p)
			if err != nil {
				t.Fatalf("%s: encrypt: %v", name, err)
			}
			if len(ct) != BlockSize {
				t.Fatalf("%s: ciphertext length %d", name, len(ct))
			}
			pt, err := DecryptBlock(k, ct)
			if err != nil {
				t.Fatalf("%s: decrypt: %v", name, err)
			}
			if !bytes.Equal(pt, p) {
				t.Fatalf("%s: round trip %x, want %x", name, pt, p)
			}
		}
	}
}

// Encrypting every single-byte-set block must give distinct outputs.
func TestEncryptBlockInjectiveOnBytePatterns(t *testing.T) {
	key := DeriveKey("wait", []byte("secret"))
	seen := make(map[string]struct{})
	for pos := 0; pos < BlockSize; pos++ {
		for v := 0; v < 256; v++ {
			b := make([]byte, BlockSize)
			b[pos] = byte(v)
			ct, err := EncryptBlock(key, b)
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}
			seen[string(ct)] = struct{}{}
			pt, _ := DecryptBlock(key, ct)
			if !bytes.Equal(pt, b) {
				t.Fatalf("pos %d value %d: round trip mismatch", pos, v)
			}
		}
	}
	// all-zero block occurs once per position
	want := BlockSize*255 + 1
	if len(seen) != want {
		t.Fatalf("expected %d distinct ciphertexts, got %d", want, len(seen))
	}
}

func TestBlockPermutationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var key [KeySize]byte
		copy(key[:], rapid.SliceOfN(rapid.Byte(), KeySize, KeySize).Draw(t, "key"))
		block := rapid.SliceOfN(rapid.Byte(), BlockSize, BlockSize).Draw(t, "block")

		ct, err := EncryptBlock(key, block)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		pt, err := DecryptBlock(key, ct)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(pt, block) {
			t.Fatalf("decrypt(encrypt(x)) = %x, want %x", pt, block)
		}
	})
}
