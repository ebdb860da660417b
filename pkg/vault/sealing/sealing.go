// Package sealing provides the authenticated encryption around stored
// payloads. Every file gets its own random data key; the data key in turn
// is wrapped under the server master key before it touches the database,
// so neither the artifact store nor the metadata rows hold usable key
// material on their own.
package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// GenerateKey returns a fresh random data key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with AES-256-GCM under key. The nonce is
// prepended to the returned ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a Seal output. Tampered or truncated ciphertext fails
// authentication and returns an error.
func Open(key, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed payload: %w", err)
	}
	return plaintext, nil
}

// WrapKey seals a data key under the master key for storage.
func WrapKey(masterKey, dataKey []byte) ([]byte, error) {
	return Seal(masterKey, dataKey)
}

// UnwrapKey recovers a data key wrapped by WrapKey.
func UnwrapKey(masterKey, wrapped []byte) ([]byte, error) {
	return Open(masterKey, wrapped)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}
