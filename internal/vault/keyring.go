package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name under which the credential is stored
	// in the platform secret manager.
	keyringService = "meridian-desk"

	// keyringCredentialKey is the account key of the stored credential.
	// Not a credential itself, just a key name.
	keyringCredentialKey = "sign-on-credential" //nolint:gosec // Key name, not a secret.

	// keyringProbeKey is a throwaway key used by the health probe.
	keyringProbeKey = "health-probe"
)

// keyringCredential is the JSON shape stored in the secret manager.
type keyringCredential struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginMode string `json:"login_mode"`
}

// keyringStore persists the credential in the platform secret manager.
type keyringStore struct{}

// newKeyringStore creates the platform secret manager backend.
func newKeyringStore() *keyringStore {
	return &keyringStore{}
}

// Save implements Store.
func (s *keyringStore) Save(_ context.Context, credential *Credential) error {
	payload, err := json.Marshal(keyringCredential{
		Username:  credential.Username,
		Password:  credential.Password.Reveal(),
		LoginMode: credential.LoginMode,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err = keyring.Set(keyringService, keyringCredentialKey, string(payload)); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return nil
}

// Load implements Store.
func (s *keyringStore) Load(_ context.Context) (*Credential, error) {
	payload, err := keyring.Get(keyringService, keyringCredentialKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	var stored keyringCredential
	if err = json.Unmarshal([]byte(payload), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}

	return &Credential{
		Username:  stored.Username,
		Password:  SecretFromString(stored.Password),
		LoginMode: stored.LoginMode,
	}, nil
}

// Delete implements Store.
func (s *keyringStore) Delete(_ context.Context) error {
	err := keyring.Delete(keyringService, keyringCredentialKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return nil
}

// probe verifies the secret manager accepts writes by storing and removing a
// throwaway entry.
func (s *keyringStore) probe() error {
	if err := keyring.Set(keyringService, keyringProbeKey, "ok"); err != nil {
		return err
	}

	return keyring.Delete(keyringService, keyringProbeKey)
}
