package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// pinPattern matches exactly four digits. Malformed input is rejected before
// it ever reaches a hash comparison.
var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ValidPin returns true if the PIN is exactly four digits
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// HashPin returns the bcrypt hash of a PIN using the given cost
func HashPin(pin string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPin compares a plain PIN against a stored bcrypt hash
func VerifyPin(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
