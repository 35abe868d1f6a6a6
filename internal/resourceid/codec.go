// Package resourceid produces opaque, prefix-scoped resource identifiers.
//
// A resource id is stored internally as a raw 16-byte UUIDv7, which sorts by
// creation time. At the application boundary the raw bytes are encrypted with
// an AES-256 key derived from the resource prefix and a process secret, then
// Base58 encoded and framed as "<prefix>_<body>", e.g. "wait_3YQ...". The
// encryption hides the timestamp and ordering structure; it is deterministic
// so the same raw id always renders to the same string.
//
// Every operation is a pure function of its arguments and the immutable
// secret, so a Codec is safe for concurrent use without locking.
package resourceid

import (
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
)

// Separator joins the prefix and the encoded body.
const Separator = "_"

// MaxEncodedLen is the longest Base58 text a BlockSize payload can produce.
// Longer bodies are rejected before decoding, keeping Decode bounded in time.
const MaxEncodedLen = 22

// Codec encodes and decodes resource ids under one process secret.
// Construct via New; the zero value is not usable.
type Codec struct {
	secret []byte
	derive KeyDeriver
	random io.Reader
}

// Option customises a Codec.
type Option func(*Codec)

// WithKeyDeriver replaces DeriveKey, letting tests pin keys without real
// configuration.
func WithKeyDeriver(fn KeyDeriver) Option {
	return func(c *Codec) {
		if fn != nil {
			c.derive = fn
		}
	}
}

// WithRandom sets the entropy source used by NewID. Defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) { c.random = r }
}

// New returns a Codec bound to secret. An empty secret is a configuration
// error and yields ErrMissingSecret.
func New(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &Codec{secret: append([]byte(nil), secret...), derive: DeriveKey}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode renders raw (16 bytes) as "<prefix>_<base58(AES(raw))>".
func (c *Codec) Encode(prefix string, raw []byte) (string, error) {
	if !ValidPrefix(prefix) {
		return "", fmt.Errorf("encode %q: %w", prefix, ErrInvalidPrefix)
	}
	if len(raw) != BlockSize {
		return "", fmt.Errorf("encode: got %d bytes: %w", len(raw), ErrInvalidInputLength)
	}
	ct, err := EncryptBlock(c.derive(prefix, c.secret), raw)
	if err != nil {
		return "", err
	}
	return prefix + Separator + base58.Encode(ct), nil
}

// Decode reverses Encode. The string must carry exactly prefix; an id minted
// for another namespace fails with ErrPrefixMismatch even if its body decodes.
func (c *Codec) Decode(prefix, external string) ([]byte, error) {
	frame := prefix + Separator
	if !ValidPrefix(prefix) || !strings.HasPrefix(external, frame) {
		return nil, fmt.Errorf("decode: expected prefix %q: %w", frame, ErrPrefixMismatch)
	}
	body := external[len(frame):]
	if len(body) > MaxEncodedLen {
		return nil, fmt.Errorf("decode: body of %d chars: %w", len(body), ErrInvalidInputLength)
	}
	ct, err := base58.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, ErrMalformedEncoding)
	}
	if len(ct) != BlockSize {
		return nil, fmt.Errorf("decode: payload of %d bytes: %w", len(ct), ErrInvalidInputLength)
	}
	return DecryptBlock(c.derive(prefix, c.secret), ct)
}

// NewID mints a fresh UUIDv7 and encodes it under prefix.
func (c *Codec) NewID(prefix string) (string, error) {
	var (
		raw []byte
		err error
	)
	if c.random != nil {
		raw, err = GenerateFrom(c.random)
	} else {
		raw, err = Generate()
	}
	if err != nil {
		return "", err
	}
	return c.Encode(prefix, raw)
}

// ValidPrefix reports whether p matches ^[a-z][a-z0-9]*$.
func ValidPrefix(p string) bool {
	if p == "" || p[0] < 'a' || p[0] > 'z' {
		return false
	}
	for i := 1; i < len(p); i++ {
		c := p[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Parse splits an external id into prefix and body without decrypting it.
// It only checks the framing, not the Base58 alphabet.
func Parse(external string) (prefix, body string, err error) {
	i := strings.Index(external, Separator)
	if i < 0 || !ValidPrefix(external[:i]) {
		return "", "", fmt.Errorf("parse %q: %w", external, ErrPrefixMismatch)
	}
	if i == len(external)-1 {
		return "", "", fmt.Errorf("parse %q: empty body: %w", external, ErrMalformedEncoding)
	}
	return external[:i], external[i+1:], nil
}
