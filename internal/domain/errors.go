// Package domain errors.go contains sentinel errors
package domain

import "errors"

// Sentinel domain-level errors reused by higher layers.
var (
	ErrInvalidID    = errors.New("invalid waitlist id")
	ErrInvalidEmail = errors.New("invalid email")
)
