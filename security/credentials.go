package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrNoCredentials = errors.New("not signed in")

type Credentials struct {
	Token     string    `yaml:"token"`
	UserID    string    `yaml:"user_id"`
	Role      string    `yaml:"role"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

type CredentialStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// FileCredentialStore keeps credentials in a YAML file readable only by the owner.
type FileCredentialStore struct {
	Path string
}

func NewFileCredentialStore(dir string) *FileCredentialStore {
	return &FileCredentialStore{Path: filepath.Join(dir, "credentials.yaml")}
}

func (s *FileCredentialStore) Load() (Credentials, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNoCredentials
		}
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("unmarshal credentials: %w", err)
	}
	if creds.Token == "" {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

func (s *FileCredentialStore) Save(creds Credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
