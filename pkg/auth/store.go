package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials is one user's entry in the server-side secrets store: the
// login password plus that user's own workspace access.
type Credentials struct {
	Password    string `yaml:"password"`
	APIKey      string `yaml:"api_key"`
	WorkspaceID string `yaml:"workspace_id"`
	BaseURL     string `yaml:"base_url"`
}

// Store is a flat username → credentials lookup loaded from a yaml file.
// There is no further authorization model.
type Store struct {
	users map[string]Credentials
}

func LoadStore(path string) (*Store, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var file struct {
		Users map[string]Credentials `yaml:"users"`
	}
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}
	log.Infof("loaded %d users from %s", len(file.Users), path)
	return &Store{users: file.Users}, nil
}

func NewStore(users map[string]Credentials) *Store {
	return &Store{users: users}
}

// Authenticate compares the password in constant time and hands out the
// user's workspace credentials on success. Unknown user and wrong password
// are indistinguishable to the caller.
func (s *Store) Authenticate(username, password string) (Credentials, error) {
	creds, ok := s.users[username]
	if !ok {
		// Burn the comparison anyway so both failure paths cost the same.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return Credentials{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(creds.Password), []byte(password)) != 1 {
		return Credentials{}, ErrInvalidCredentials
	}
	return creds, nil
}
