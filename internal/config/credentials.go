package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Moontok/WorkshopApp/internal/crypto"
)

// UpdateCredentials rewrites user_name and password in the configuration file at path.
// Every other key in the file is preserved as-is. When enc is enabled the password is
// stored encrypted and password_encrypted is set; otherwise the flag is removed.
func UpdateCredentials(path string, cred Credential, enc *crypto.Encryptor) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return fmt.Errorf("reading config: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrConfigInvalid, path, err)
	}
	if raw == nil {
		raw = make(map[string]json.RawMessage)
	}

	password, err := enc.Encrypt(cred.Password)
	if err != nil {
		return fmt.Errorf("encrypting password: %w", err)
	}

	if err := setString(raw, "user_name", cred.UserName); err != nil {
		return err
	}
	if err := setString(raw, "password", password); err != nil {
		return err
	}
	if enc.Enabled() {
		raw["password_encrypted"] = json.RawMessage("true")
	} else {
		delete(raw, "password_encrypted")
	}

	out, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return writeFileAtomic(path, append(out, '\n'))
}

func setString(raw map[string]json.RawMessage, key, value string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	raw[key] = encoded
	return nil
}

// writeFileAtomic writes via a temp file in the same directory and renames it into place
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".connection_info-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Chmod(0600); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	tmpFile = nil
	return nil
}
