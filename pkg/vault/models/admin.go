package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

const (
	// SuperAdminUsername is the reserved bootstrap account name.
	SuperAdminUsername = "superadmin"

	// EnvSuperAdminInitialPassword, when set, seeds the bootstrap account's
	// password instead of generating a random one.
	EnvSuperAdminInitialPassword = "SAFESPLIT_SUPERADMIN_INITIAL_PASSWORD"

	generatedPasswordBytes = 18
)

// DefaultSuperAdminUser returns the template for the bootstrap account.
// The password hash must be filled in before persisting.
func DefaultSuperAdminUser() *User {
	return &User{
		Username:           SuperAdminUsername,
		Email:              SuperAdminUsername + "@localhost",
		Role:               RoleSuperAdmin,
		Enabled:            true,
		MustChangePassword: true,
	}
}

// GetOrGenerateSuperAdminPassword returns the bootstrap password and whether
// it was freshly generated. A generated password must be printed once at
// startup; it is never stored in plaintext.
func GetOrGenerateSuperAdminPassword() (password string, generated bool, err error) {
	if env := os.Getenv(EnvSuperAdminInitialPassword); env != "" {
		if err := ValidatePassword(env); err != nil {
			return "", false, fmt.Errorf("%s: %w", EnvSuperAdminInitialPassword, err)
		}
		return env, false, nil
	}
	password, err = GenerateRandomPassword()
	if err != nil {
		return "", false, err
	}
	return password, true, nil
}

// GenerateRandomPassword returns a URL-safe random password suitable for
// the bootstrap account.
func GenerateRandomPassword() (string, error) {
	buf := make([]byte, generatedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// IsSuperAdminUsername reports whether name is the reserved bootstrap
// account name.
func IsSuperAdminUsername(name string) bool {
	return name == SuperAdminUsername
}
