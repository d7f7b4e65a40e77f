package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Secrets resolves provider credentials. The process environment wins over
// the .secrets file so a one-off override needs no file edit.
type Secrets struct {
	values map[string]string
	getenv func(string) string
}

// NewSecrets creates a Secrets instance backed by the given values and the
// process environment.
func NewSecrets(values map[string]string) *Secrets {
	if values == nil {
		values = make(map[string]string)
	}
	return &Secrets{
		values: values,
		getenv: os.Getenv,
	}
}

// SecretsPath returns the secrets file path
func SecretsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".secrets"), nil
}

// LoadSecrets loads the .secrets file in dotenv syntax. A missing file is
// not an error; the environment alone is then used.
func LoadSecrets() (*Secrets, error) {
	secretsPath, err := SecretsPath()
	if err != nil {
		return NewSecrets(nil), nil
	}

	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return NewSecrets(nil), nil
	}

	values, err := godotenv.Read(secretsPath)
	if err != nil {
		return NewSecrets(nil), fmt.Errorf("failed to parse secrets file: %w", err)
	}

	return NewSecrets(values), nil
}

// Lookup returns the credential value, or "" if it is not set anywhere.
// It is evaluated on every call so rotated environment values are seen.
func (s *Secrets) Lookup(name string) string {
	if s == nil || name == "" {
		return ""
	}
	if s.getenv != nil {
		if value := strings.TrimSpace(s.getenv(name)); value != "" {
			return value
		}
	}
	return strings.TrimSpace(s.values[name])
}

// Has checks if a credential resolves to a non-empty value
func (s *Secrets) Has(name string) bool {
	return s.Lookup(name) != ""
}
