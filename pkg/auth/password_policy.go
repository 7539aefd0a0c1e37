package auth

import (
	"fmt"
	"unicode"

	"github.com/facegate/facegate/pkg/domain"
)

// PasswordPolicy defines password complexity requirements.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// DefaultPasswordPolicy returns the policy applied to user-chosen
// passwords: at least 8 characters with one uppercase letter, one
// lowercase letter, one digit, and one special character.
func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}
}

// ValidatePassword checks if a password meets the policy requirements.
// The returned error wraps domain.ErrWeakPassword.
func (p *PasswordPolicy) ValidatePassword(password string) error {
	if p.MinLength > 0 && len(password) < p.MinLength {
		return fmt.Errorf("%w: must be at least %d characters long", domain.ErrWeakPassword, p.MinLength)
	}
	if p.RequireUppercase && !containsUppercase(password) {
		return fmt.Errorf("%w: must contain at least one uppercase letter", domain.ErrWeakPassword)
	}
	if p.RequireLowercase && !containsLowercase(password) {
		return fmt.Errorf("%w: must contain at least one lowercase letter", domain.ErrWeakPassword)
	}
	if p.RequireNumber && !containsNumber(password) {
		return fmt.Errorf("%w: must contain at least one number", domain.ErrWeakPassword)
	}
	if p.RequireSpecial && !containsSpecial(password) {
		return fmt.Errorf("%w: must contain at least one special character", domain.ErrWeakPassword)
	}
	return nil
}

func containsUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func containsLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func containsNumber(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func containsSpecial(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
