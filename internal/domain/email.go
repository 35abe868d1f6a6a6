// Package domain email.go contains the waitlist entry model and email validation.
package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Entry is one waitlist signup as seen by application code.
type Entry struct {
	ID        EntryID
	Email     string
	CreatedAt time.Time
}

var validate = validator.New()

// NormalizeEmail trims and lowercases s, then validates it as an address of
// at most 254 characters. Returns ErrInvalidEmail on failure.
func NormalizeEmail(s string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(s))
	if err := validate.Var(e, "required,email,max=254"); err != nil {
		return "", ErrInvalidEmail
	}
	return e, nil
}
