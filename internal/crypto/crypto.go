// Package crypto encrypts secrets kept in the workshop-sync configuration file.
//
// The portal password is the only secret the tool stores. When an encryption key is
// configured the password is written as base64 AES-256-GCM ciphertext with a key derived
// from the passphrase via PBKDF2.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 100000
	keySize    = 32 // AES-256
	saltSuffix = "workshop-sync-salt"
)

// ErrDecrypt is returned when a stored secret cannot be decrypted with the configured key
var ErrDecrypt = errors.New("cannot decrypt secret (wrong encryption key?)")

// Encryptor handles encryption and decryption of stored secrets
type Encryptor struct {
	key []byte
}

// NewEncryptor creates an encryptor for the given passphrase.
// An empty passphrase returns nil, and a nil Encryptor passes values through unchanged.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}

	// Salt is derived from the passphrase so the config file stays self-contained
	salt := sha256.Sum256([]byte(passphrase + saltSuffix))
	key := pbkdf2.Key([]byte(passphrase), salt[:], iterations, keySize, sha256.New)

	return &Encryptor{key: key}
}

// Enabled reports whether values will actually be encrypted
func (e *Encryptor) Enabled() bool {
	return e != nil && e.key != nil
}

// Encrypt encrypts plaintext using AES-GCM and returns base64 ciphertext
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if !e.Enabled() || plaintext == "" {
		return plaintext, nil
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Unlike a lenient pass-through, a value that does not decrypt
// yields ErrDecrypt: sending ciphertext to the portal as a password would only produce a
// confusing login failure.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if !e.Enabled() || ciphertext == "" {
		return ciphertext, nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, cipherData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}

func (e *Encryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
