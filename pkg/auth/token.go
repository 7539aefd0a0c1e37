package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"math/big"
)

// GenerateToken returns an unguessable opaque token of n random bytes,
// base64url-encoded without padding.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := randomBytes(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the hex-encoded SHA-256 of a token. Opaque tokens
// are stored hashed so a leaked database does not leak valid tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Character classes for temporary passwords.
const (
	tempPasswordUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tempPasswordLowercase = "abcdefghijklmnopqrstuvwxyz"
	tempPasswordDigits    = "0123456789"
	tempPasswordSpecial   = "!@#$%^&*"
)

// GenerateTemporaryPassword returns a random password of the given
// length (minimum 8) guaranteed to contain at least one uppercase
// letter, one lowercase letter, one digit, and one special character.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	charset := tempPasswordUppercase + tempPasswordLowercase + tempPasswordDigits + tempPasswordSpecial

	password := make([]byte, 0, length)
	for _, class := range []string{
		tempPasswordUppercase,
		tempPasswordLowercase,
		tempPasswordDigits,
		tempPasswordSpecial,
	} {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	for len(password) < length {
		c, err := randomChar(charset)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	if err := shuffle(password); err != nil {
		return "", err
	}
	return string(password), nil
}

func randomChar(charset string) (byte, error) {
	i, err := randomInt(len(charset))
	if err != nil {
		return 0, err
	}
	return charset[i], nil
}

// shuffle performs a Fisher-Yates shuffle with crypto/rand indices.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

func randomBytes(b []byte) (int, error) {
	return rand.Read(b)
}

func constantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
