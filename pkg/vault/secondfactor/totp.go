package secondfactor

import (
	"fmt"

	"github.com/pquerna/otp/totp"
)

// TOTPIssuer is the issuer name shown in authenticator apps.
const TOTPIssuer = "SafeSplit"

// GenerateTOTPSecret enrolls an account with a fresh authenticator secret.
// It returns the base32 secret and the otpauth:// provisioning URL.
func GenerateTOTPSecret(accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", fmt.Errorf("generating totp secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP checks an authenticator code against an enrolled secret
// using the default 30-second period.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
