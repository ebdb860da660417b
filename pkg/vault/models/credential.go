package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the default floor enforced on passwords and
	// share passwords. Deployments can raise it via configuration but
	// never lower it.
	MinPasswordLength = 6

	// MaxPasswordLength is the bcrypt input ceiling.
	MaxPasswordLength = 72

	// DefaultBcryptCost balances login latency against brute-force cost.
	DefaultBcryptCost = 10

	// OneTimeCodeLength is the number of digits in an emailed challenge code.
	OneTimeCodeLength = 6

	// ShareTokenBytes is the entropy of a share link token before encoding.
	ShareTokenBytes = 24
)

// HashPassword hashes a plaintext secret with bcrypt at DefaultBcryptCost.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext secret against a bcrypt hash in
// constant time. It returns ErrInvalidCredentials on mismatch so callers
// cannot distinguish a wrong password from a malformed hash.
func VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// minPasswordLength is the active floor, raised from MinPasswordLength by
// SetMinPasswordLength at startup.
var minPasswordLength = MinPasswordLength

// SetMinPasswordLength raises the password length floor for the process.
// Values at or below MinPasswordLength are ignored, so the floor can be
// raised but never lowered.
func SetMinPasswordLength(n int) {
	if n > MinPasswordLength {
		minPasswordLength = n
	}
}

// ValidatePassword checks length bounds only. Composition rules are left
// to deployment policy.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

// GenerateShareToken returns a URL-safe random token for a share link.
func GenerateShareToken() (string, error) {
	buf := make([]byte, ShareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateOneTimeCode returns a zero-padded numeric code for email
// challenges, drawn from crypto/rand.
func GenerateOneTimeCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OneTimeCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating one-time code: %w", err)
	}
	return fmt.Sprintf("%0*d", OneTimeCodeLength, n), nil
}
