// Package validation holds the input rules shared by registration, profile
// updates and user search.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
	// MinSearchQueryLength is the shortest accepted user search query.
	MinSearchQueryLength = 2

	minUsernameLength = 3
	maxUsernameLength = 30
	maxEmailLength    = 254
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// FieldError reports which input broke which rule. Its message is safe to
// return to clients.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

func fieldErr(field, format string, args ...any) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidatePassword requires a password that fits bcrypt's input limit.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return fieldErr("password", "is required")
	case len(password) > MaxPasswordBytes:
		return fieldErr("password", "must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateUsername allows 3 to 30 ASCII letters, digits, underscores and
// hyphens, with a letter or digit at both ends.
func ValidateUsername(username string) error {
	if n := len(username); n < minUsernameLength || n > maxUsernameLength {
		return fieldErr("username", "must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	for i := 0; i < len(username); i++ {
		if !isUsernameByte(username[i]) {
			return fieldErr("username", "can only contain letters, numbers, underscores and hyphens")
		}
	}
	if isSeparator(username[0]) || isSeparator(username[len(username)-1]) {
		return fieldErr("username", "cannot start or end with an underscore or hyphen")
	}
	return nil
}

func isUsernameByte(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9') || isSeparator(b)
}

func isSeparator(b byte) bool { return b == '_' || b == '-' }

// ValidateEmail is a shape check only; deliverability is not verified.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fieldErr("email", "must not exceed %d characters", maxEmailLength)
	}
	if !emailPattern.MatchString(email) {
		return fieldErr("email", "is not a valid address")
	}
	return nil
}

// NormalizeSearchQuery trims q and rejects queries shorter than
// MinSearchQueryLength characters.
func NormalizeSearchQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fieldErr("q", "is required")
	}
	if utf8.RuneCountInString(q) < MinSearchQueryLength {
		return "", fieldErr("q", "must be at least %d characters", MinSearchQueryLength)
	}
	return q, nil
}
