// internal/crypto/crypto.go
//
// This package protects target passwords stored in the remotail settings file.
// Values are sealed with AES-256-GCM and stored as "enc:<hex(nonce|ciphertext)>".

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// EncryptedPrefix marks a settings value that must be decrypted before use.
	EncryptedPrefix = "enc:"

	// KeyEnv names the environment variable holding the passphrase.
	KeyEnv = "REMOTAIL_KEY"
)

// Cipher represents an AES-256-GCM cipher with a specific key.
type Cipher struct {
	key []byte
}

// NewCipher derives a 32 byte key from passphrase.
func NewCipher(passphrase string) *Cipher {
	sum := sha256.Sum256([]byte(passphrase))
	return &Cipher{key: sum[:]}
}

// CipherFromEnv builds a Cipher from REMOTAIL_KEY, or returns nil when it is unset.
func CipherFromEnv() *Cipher {
	passphrase := os.Getenv(KeyEnv)
	if passphrase == "" {
		return nil
	}
	return NewCipher(passphrase)
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

// Encrypt seals plaintext and returns the prefixed hex form.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aesGCM, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the ciphertext to the nonce slice.
	sealed := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + hex.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. The "enc:" prefix is optional.
func (c *Cipher) Decrypt(value string) (string, error) {
	combined, err := hex.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}

	aesGCM, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(combined) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := aesGCM.Open(nil, combined[:nonceSize], combined[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the "enc:" prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
