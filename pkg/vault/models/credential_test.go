package models

import (
	"errors"
	"regexp"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword("correct horse", hash); err != nil {
		t.Errorf("VerifyPassword with correct password: %v", err)
	}
	if err := VerifyPassword("wrong horse", hash); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("VerifyPassword with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if err := VerifyPassword("anything", "not-a-bcrypt-hash"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("malformed hash = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"at minimum length", "abcdef", false},
		{"below minimum", "abcde", true},
		{"empty", "", true},
		{"typical", "s3cret-passphrase", false},
		{"at bcrypt ceiling", string(make([]byte, 72)), false},
		{"over bcrypt ceiling", string(make([]byte, 73)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%d chars) = %v, wantErr %v", len(tt.password), err, tt.wantErr)
			}
		})
	}
}

func TestSetMinPasswordLength(t *testing.T) {
	t.Cleanup(func() { minPasswordLength = MinPasswordLength })

	SetMinPasswordLength(10)
	if err := ValidatePassword("ninechars"); err == nil {
		t.Error("Expected 9-char password to fail with floor raised to 10")
	}
	if err := ValidatePassword("ten chars!"); err != nil {
		t.Errorf("ValidatePassword at raised floor: %v", err)
	}

	// The floor can be raised but never lowered.
	SetMinPasswordLength(4)
	if err := ValidatePassword("abcde"); err == nil {
		t.Error("Expected floor to stay at 10 after a lowering attempt")
	}
}

func TestGenerateOneTimeCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 20; i++ {
		code, err := GenerateOneTimeCode()
		if err != nil {
			t.Fatalf("GenerateOneTimeCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q is not six digits", code)
		}
	}
}

func TestGenerateShareTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateShareToken()
		if err != nil {
			t.Fatalf("GenerateShareToken: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
