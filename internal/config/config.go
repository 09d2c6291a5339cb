// Package config loads and updates the workshop-sync connection configuration.
//
// The configuration is a JSON object holding the portal URLs and the login credential:
//
//	{
//	    "signin_page_url": "https://portal.example.org/Login.aspx",
//	    "instructor_page_url": "https://portal.example.org/Instructor.aspx",
//	    "participant_page_base_url": "https://portal.example.org/Roster.aspx?id=",
//	    "base_workshop_url": "https://portal.example.org/Session.aspx?id=",
//	    "user_name": "jdoe",
//	    "password": "..."
//	}
//
// The credential can be overridden from the environment or a .env file, and the stored
// password may be encrypted (see internal/crypto).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Moontok/WorkshopApp/internal/crypto"
	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/joho/godotenv"
)

// FileName is the conventional name of the configuration file
const FileName = "connection_info.json"

// Environment overrides
const (
	EnvUserName      = "WORKSHOP_SYNC_USER_NAME"
	EnvPassword      = "WORKSHOP_SYNC_PASSWORD"
	EnvEncryptionKey = "WORKSHOP_SYNC_ENCRYPTION_KEY"
)

var (
	// ErrConfigMissing means the configuration file does not exist
	ErrConfigMissing = errors.New("missing configuration file")

	// ErrConfigInvalid means the file exists but lacks required settings
	ErrConfigInvalid = errors.New("invalid configuration")
)

// Credential is the portal login
type Credential struct {
	UserName string
	Password string
}

// Config holds the portal connection settings
type Config struct {
	SigninPageURL          string `json:"signin_page_url"`
	InstructorPageURL      string `json:"instructor_page_url"`
	ParticipantPageBaseURL string `json:"participant_page_base_url"`
	BaseWorkshopURL        string `json:"base_workshop_url"`
	UserName               string `json:"user_name"`
	Password               string `json:"password"`
	PasswordEncrypted      bool   `json:"password_encrypted,omitempty"`

	encryptionKey string
}

// Options tune how a configuration is loaded
type Options struct {
	// EnvFile is an optional .env file consulted for overrides; process
	// environment variables win over values in the file.
	EnvFile string

	// EncryptionKey decrypts an encrypted password. Falls back to
	// WORKSHOP_SYNC_ENCRYPTION_KEY.
	EncryptionKey string
}

// DefaultPath returns $XDG_CONFIG_HOME/workshop-sync/connection_info.json,
// or ~/.config/workshop-sync/connection_info.json
func DefaultPath() string {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "workshop-sync", FileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "workshop-sync", FileName)
}

// Load reads and validates the configuration at path
func Load(path string, opts Options) (*Config, error) {
	fi, statErr := os.Stat(path)
	if statErr == nil && (fi.Mode().Perm()&0o077) != 0 {
		logger.Warn("Configuration file is readable by other users", logger.Fields{
			"path": path,
			"mode": fi.Mode().Perm().String(),
			"hint": "chmod 600 " + path,
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfigInvalid, path, err)
	}

	env, err := readEnv(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if v := env[EnvUserName]; v != "" {
		cfg.UserName = v
	}
	if v := env[EnvPassword]; v != "" {
		cfg.Password = v
		cfg.PasswordEncrypted = false
	}

	cfg.encryptionKey = opts.EncryptionKey
	if cfg.encryptionKey == "" {
		cfg.encryptionKey = env[EnvEncryptionKey]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every URL the sync needs is present
func (c *Config) Validate() error {
	var missing []string
	if c.SigninPageURL == "" {
		missing = append(missing, "signin_page_url")
	}
	if c.InstructorPageURL == "" {
		missing = append(missing, "instructor_page_url")
	}
	if c.ParticipantPageBaseURL == "" {
		missing = append(missing, "participant_page_base_url")
	}
	if c.BaseWorkshopURL == "" {
		missing = append(missing, "base_workshop_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfigInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// Credential returns the login, decrypting the stored password if needed
func (c *Config) Credential() (Credential, error) {
	password := c.Password
	if c.PasswordEncrypted {
		enc := crypto.NewEncryptor(c.encryptionKey)
		if !enc.Enabled() {
			return Credential{}, fmt.Errorf("%w: password is encrypted but no encryption key is set (%s)", ErrConfigInvalid, EnvEncryptionKey)
		}
		plain, err := enc.Decrypt(password)
		if err != nil {
			return Credential{}, fmt.Errorf("decrypting password: %w", err)
		}
		password = plain
	}

	if c.UserName == "" || password == "" {
		return Credential{}, fmt.Errorf("%w: user_name and password are required", ErrConfigInvalid)
	}

	return Credential{UserName: c.UserName, Password: password}, nil
}

// WorkshopURL returns the public detail page for a workshop
func (c *Config) WorkshopURL(workshopID string) string {
	return c.BaseWorkshopURL + workshopID
}

// RosterURL returns the participant roster page for a workshop
func (c *Config) RosterURL(workshopID string) string {
	return c.ParticipantPageBaseURL + workshopID
}

func readEnv(envFile string) (map[string]string, error) {
	values := make(map[string]string)

	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	for _, key := range []string{EnvUserName, EnvPassword, EnvEncryptionKey} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	return values, nil
}
