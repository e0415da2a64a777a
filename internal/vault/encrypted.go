package vault

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/meridianlabs/meridian-desk/internal/constants"
)

const (
	// scryptN, scryptR and scryptP are the scrypt cost parameters.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	// saltLength is the length of the per-file scrypt salt.
	saltLength = 16

	// machineSecretLength is the length of the random machine secret the key
	// file holds.
	machineSecretLength = 32
)

// ErrCorruptCredentialFile indicates that the encrypted file cannot be decrypted.
var ErrCorruptCredentialFile = errors.New("encrypted credential file is corrupt")

// encryptedStore persists the credential in a file sealed with
// XChaCha20-Poly1305. The cipher key is derived via scrypt from a random
// machine secret kept in a separate owner-only key file, so the credential
// file alone is useless if copied off the machine.
type encryptedStore struct {
	// path is the encrypted credential file.
	path string
	// keyPath is the machine secret file.
	keyPath string
}

// encryptedCredential is the plaintext JSON shape sealed into the file.
type encryptedCredential struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginMode string `json:"login_mode"`
}

// newEncryptedStore creates the encrypted file backend.
func newEncryptedStore(path, keyPath string) *encryptedStore {
	return &encryptedStore{path: path, keyPath: keyPath}
}

// Save implements Store.
func (s *encryptedStore) Save(_ context.Context, credential *Credential) error {
	machineSecret, err := s.loadOrCreateMachineSecret()
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(encryptedCredential{
		Username:  credential.Username,
		Password:  credential.Password.Reveal(),
		LoginMode: credential.LoginMode,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err = rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key(machineSecret, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// File layout: salt || nonce || ciphertext.
	sealed := append(append(salt, nonce...), aead.Seal(nil, nonce, plaintext, nil)...)

	if err = os.MkdirAll(filepath.Dir(s.path), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if err = os.WriteFile(s.path, sealed, constants.SecretFilePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return nil
}

// Load implements Store.
func (s *encryptedStore) Load(_ context.Context) (*Credential, error) {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	machineSecret, err := os.ReadFile(s.keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: missing key file: %w", ErrCorruptCredentialFile, err)
	}

	minimumLength := saltLength + chacha20poly1305.NonceSizeX
	if len(sealed) <= minimumLength {
		return nil, ErrCorruptCredentialFile
	}

	salt := sealed[:saltLength]
	nonce := sealed[saltLength:minimumLength]
	ciphertext := sealed[minimumLength:]

	key, err := scrypt.Key(machineSecret, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCredentialFile, err)
	}

	var stored encryptedCredential
	if err = json.Unmarshal(plaintext, &stored); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCredentialFile, err)
	}

	return &Credential{
		Username:  stored.Username,
		Password:  SecretFromString(stored.Password),
		LoginMode: stored.LoginMode,
	}, nil
}

// Delete implements Store.
func (s *encryptedStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return nil
}

// loadOrCreateMachineSecret reads the machine secret, generating it on first use.
func (s *encryptedStore) loadOrCreateMachineSecret() ([]byte, error) {
	machineSecret, err := os.ReadFile(s.keyPath)
	if err == nil {
		return machineSecret, nil
	}

	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	machineSecret = make([]byte, machineSecretLength)
	if _, err = rand.Read(machineSecret); err != nil {
		return nil, fmt.Errorf("failed to generate machine secret: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.keyPath), constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if err = os.WriteFile(s.keyPath, machineSecret, constants.SecretFilePermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return machineSecret, nil
}

// probe verifies the backend's directory is writable.
func (s *encryptedStore) probe() error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DefaultFolderPermissions); err != nil {
		return err
	}

	probePath := s.path + ".probe"

	if err := os.WriteFile(probePath, []byte("ok"), constants.SecretFilePermissions); err != nil {
		return err
	}

	return os.Remove(probePath)
}
