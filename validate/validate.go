// Package validate holds the pure input checks shared by the services.
// Functions here never touch a store; the only error they return is *Error.
package validate

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxLen    = 200
	NameMaxLen     = 100
	PasswordMinLen = 8
	PasswordMaxLen = 72 // bcrypt input limit
)

// Error reports the specific constraint an input violated. Transports map it
// to a 400-class response.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Field + " " + e.Reason
}

func newError(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

// Title trims surrounding whitespace and checks the 1-200 character bound.
// It returns the trimmed title, so applying it twice is a no-op. Bounds count
// characters, not bytes, so multibyte titles are not penalized.
func Title(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", newError("title", "cannot be empty")
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return "", newError("title", "must be 1-200 characters")
	}
	return title, nil
}

// Identifier rejects empty or whitespace-only values and otherwise returns
// the input unchanged.
func Identifier(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", newError("identifier", "cannot be empty")
	}
	return raw, nil
}

func Name(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", newError("name", "cannot be empty")
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		return "", newError("name", "must be 1-100 characters")
	}
	return name, nil
}

func Email(raw string) (string, error) {
	email, err := Identifier(raw)
	if err != nil {
		return "", newError("email", "cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", newError("email", "is not a valid address")
	}
	return email, nil
}

// Password checks an 8-character minimum and the 72-byte bcrypt input limit.
// The minimum counts characters; the maximum must stay a byte count.
func Password(raw string) error {
	if utf8.RuneCountInString(raw) < PasswordMinLen {
		return newError("password", "must be at least 8 characters")
	}
	if len(raw) > PasswordMaxLen {
		return newError("password", "must be at most 72 bytes")
	}
	return nil
}
