package vault

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// Source identifies a credential storage backend.
type Source string

// Recognized credential storage sources.
const (
	// SourcePlatform is the operating system's secret manager.
	SourcePlatform Source = "platform"
	// SourceEncryptedFile is the encrypted credential file.
	SourceEncryptedFile Source = "encrypted_file"
	// SourceLegacyFile is the plaintext credential file older releases wrote.
	SourceLegacyFile Source = "legacy_file"
	// SourceNone disables credential storage.
	SourceNone Source = "none"
)

// Credential is the user-supplied sign-on material. The vault owns it
// exclusively; consumers must call Zero after first use.
type Credential struct {
	// Username is the sign-on identifier (e-mail or account name).
	Username string
	// Password is the sign-on password.
	Password Secret
	// LoginMode records which sign-on flow the credential belongs to.
	LoginMode string
}

// Zero wipes the credential's sensitive material from memory.
func (c *Credential) Zero() {
	if c == nil {
		return
	}

	c.Username = ""
	c.Password.Zero()
}

// Store persists a single credential in one backend.
type Store interface {
	// Save stores the credential, replacing any previous one.
	Save(ctx context.Context, credential *Credential) error
	// Load retrieves the stored credential, or ErrCredentialNotFound.
	Load(ctx context.Context) (*Credential, error)
	// Delete removes the stored credential. Deleting a missing credential is not an error.
	Delete(ctx context.Context) error
}

// Static error definitions for better error handling.
var (
	// ErrCredentialNotFound indicates that no credential is stored in the backend.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrBackendUnavailable indicates that a storage backend cannot be used right now.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrNoUsableSource indicates that no backend satisfies the preference.
	ErrNoUsableSource = errors.New("no usable credential storage source")
)

// File names used by the file-based backends, relative to the vault directory.
const (
	encryptedFileName    = "credentials.enc"
	encryptedKeyFileName = "credentials.key"
	legacyFileName       = "credentials.yaml"
	warningFlagFileName  = "legacy-warning-dismissed"
)

// Vault bundles the backends, the health check and the source resolver.
type Vault struct {
	platform  *keyringStore
	encrypted *encryptedStore
	legacy    *legacyStore

	// dir is the directory holding the file-based backends.
	dir string
}

// NewVault creates a vault whose file-based backends live under dir.
func NewVault(dir string) *Vault {
	return &Vault{
		platform:  newKeyringStore(),
		encrypted: newEncryptedStore(filepath.Join(dir, encryptedFileName), filepath.Join(dir, encryptedKeyFileName)),
		legacy:    newLegacyStore(filepath.Join(dir, legacyFileName)),
		dir:       dir,
	}
}

// Store returns the backend for the given source.
func (v *Vault) Store(source Source) (Store, error) {
	switch source {
	case SourcePlatform:
		return v.platform, nil
	case SourceEncryptedFile:
		return v.encrypted, nil
	case SourceLegacyFile:
		return v.legacy, nil
	case SourceNone:
		return nil, ErrNoUsableSource
	default:
		return nil, fmt.Errorf("%w: unknown source '%s'", ErrNoUsableSource, source)
	}
}

// LegacyFilePath returns the path of the legacy plaintext credential file.
func (v *Vault) LegacyFilePath() string {
	return v.legacy.path
}
