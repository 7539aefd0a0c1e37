package auth

import (
	"fmt"
	"html"
	"net/mail"
	"strings"
	"unicode"

	"github.com/facegate/facegate/pkg/domain"
)

const maxEmailLength = 254 // RFC 5321

// ValidateEmail validates an email address for format and length.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email address is required", domain.ErrInvalidEmail)
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email address is too long (max %d characters)", domain.ErrInvalidEmail, maxEmailLength)
	}
	if _, err := mail.ParseAddress(NormalizeEmail(email)); err != nil {
		return fmt.Errorf("%w: invalid format", domain.ErrInvalidEmail)
	}
	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and
// trimming. Accounts always store the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeName sanitizes a name field (unicode-friendly).
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = removeControlChars(name)
	return html.EscapeString(name)
}

// removeControlChars removes control characters except newline and tab.
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
