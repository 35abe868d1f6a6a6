// Package resourceid errors.go contains sentinel errors for the identifier codec.
package resourceid

import "errors"

// Sentinel errors. Every failure returned by this package wraps exactly one of
// these so callers can branch with errors.Is.
var (
	// ErrMissingSecret is a startup configuration failure: the codec cannot be
	// constructed without a secret. It is never returned by a per-call operation.
	ErrMissingSecret = errors.New("resource id secret missing")
	// ErrInvalidInputLength reports a plaintext or decoded payload that is not
	// exactly BlockSize bytes.
	ErrInvalidInputLength = errors.New("invalid input length")
	// ErrInvalidLength reports a cipher block of the wrong size.
	ErrInvalidLength = errors.New("invalid block length")
	// ErrPrefixMismatch reports an identifier whose namespace segment is not the
	// expected prefix.
	ErrPrefixMismatch = errors.New("resource id prefix mismatch")
	// ErrMalformedEncoding reports a body that is not valid Base58 text.
	ErrMalformedEncoding = errors.New("malformed resource id encoding")
	// ErrInvalidPrefix reports a prefix outside ^[a-z][a-z0-9]*$.
	ErrInvalidPrefix = errors.New("invalid resource id prefix")
)
