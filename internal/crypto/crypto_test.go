package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestNewEncryptor(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		wantNil    bool
	}{
		{"valid passphrase", "strong-passphrase-123", false},
		{"empty passphrase returns nil", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncryptor(tt.passphrase)
			if tt.wantNil && enc != nil {
				t.Errorf("NewEncryptor() = %v, want nil", enc)
			}
			if !tt.wantNil && enc == nil {
				t.Error("NewEncryptor() = nil, want non-nil")
			}
			if enc.Enabled() == tt.wantNil {
				t.Errorf("Enabled() = %v, want %v", enc.Enabled(), !tt.wantNil)
			}
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple password", "hunter2"},
		{"empty string", ""},
		{"special characters", "!@#$%^&*()_+-=[]{}|;:',.<>?"},
		{"unicode", "pässwörd-ü"},
		{"long value", strings.Repeat("x", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := enc.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if tt.plaintext != "" && encrypted == tt.plaintext {
				t.Error("Encrypt() returned plaintext unchanged")
			}

			decrypted, err := enc.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if decrypted != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncryptDecrypt_NilEncryptor(t *testing.T) {
	var enc *Encryptor

	encrypted, err := enc.Encrypt("hunter2")
	if err != nil || encrypted != "hunter2" {
		t.Errorf("nil Encrypt() = %q, %v; want pass-through", encrypted, err)
	}

	decrypted, err := enc.Decrypt("hunter2")
	if err != nil || decrypted != "hunter2" {
		t.Errorf("nil Decrypt() = %q, %v; want pass-through", decrypted, err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	encrypted, err := NewEncryptor("key-one").Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	_, err = NewEncryptor("key-two").Decrypt(encrypted)
	if !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() with wrong key error = %v, want ErrDecrypt", err)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "plain text password!"},
		{"too short", "YWJj"}, // "abc"
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decrypt(tt.input); !errors.Is(err, ErrDecrypt) {
				t.Errorf("Decrypt(%q) error = %v, want ErrDecrypt", tt.input, err)
			}
		})
	}
}

func TestEncryption_NonDeterministic(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	first, _ := enc.Encrypt("hunter2")
	second, _ := enc.Encrypt("hunter2")

	if first == second {
		t.Error("two encryptions of the same value should use different nonces")
	}
}

func TestEncryption_ConsistentKeyDerivation(t *testing.T) {
	encrypted, err := NewEncryptor("same-passphrase").Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	// A fresh encryptor with the same passphrase must read it back
	decrypted, err := NewEncryptor("same-passphrase").Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if decrypted != "hunter2" {
		t.Errorf("Decrypt() = %q, want hunter2", decrypted)
	}
}
