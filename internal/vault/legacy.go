package vault

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meridianlabs/meridian-desk/internal/constants"
)

// legacyCredential is the YAML shape older releases wrote in the clear.
// Field names are frozen for compatibility with existing files.
type legacyCredential struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	LoginMode string `yaml:"login_mode"`
}

// legacyStore reads and writes the plaintext credential file older releases
// used. It exists only so upgrades keep working; the resolver prefers every
// other backend over it and its use raises a warning.
type legacyStore struct {
	// path is the plaintext credential file.
	path string
}

// newLegacyStore creates the legacy plaintext backend.
func newLegacyStore(path string) *legacyStore {
	return &legacyStore{path: path}
}

// Save implements Store.
func (s *legacyStore) Save(_ context.Context, credential *Credential) error {
	payload, err := yaml.Marshal(legacyCredential{
		Username:  credential.Username,
		Password:  credential.Password.Reveal(),
		LoginMode: credential.LoginMode,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err = os.WriteFile(s.path, payload, constants.SecretFilePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return nil
}

// Load implements Store.
func (s *legacyStore) Load(_ context.Context) (*Credential, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	var stored legacyCredential
	if err = yaml.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode legacy credential file: %w", err)
	}

	return &Credential{
		Username:  stored.Username,
		Password:  SecretFromString(stored.Password),
		LoginMode: stored.LoginMode,
	}, nil
}

// Delete implements Store.
func (s *legacyStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return nil
}

// present reports whether the legacy file exists.
func (s *legacyStore) present() bool {
	_, err := os.Stat(s.path)

	return err == nil
}

// probe verifies the legacy file exists and is readable.
func (s *legacyStore) probe() error {
	file, err := os.Open(s.path)
	if err != nil {
		return err
	}

	return file.Close()
}
