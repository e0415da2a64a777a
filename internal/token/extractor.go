package token

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/surface"
)

const (
	// DefaultTokenLifetime is assumed when the access token's expiry
	// cannot be read from its payload.
	DefaultTokenLifetime = 3600 * time.Second

	credentialTypeAccess  = "AccessToken"
	credentialTypeRefresh = "RefreshToken"

	expiryCacheSize = 32
)

// ErrTokenAbsent is returned when the storage dump has no access-token
// entry. A missing refresh token is not an error.
var ErrTokenAbsent = errors.New("no access token entry in storage dump")

// TokenPair is what the extractor pulls out of a storage dump.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// storageCredential is the shape of the auth library's storage entries.
// Only the fields the extractor reads are declared.
type storageCredential struct {
	CredentialType string `json:"credentialType"`
	Secret         string `json:"secret"`
}

// Extractor locates token entries in a local storage dump and derives
// the access token's remaining lifetime from its payload. Decoded
// expiries are cached because the same token is re-extracted on every
// cascade hop.
type Extractor struct {
	expiryCache *lru.Cache[string, time.Time]
	now         func() time.Time
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	cache, _ := lru.New[string, time.Time](expiryCacheSize)

	return &Extractor{
		expiryCache: cache,
		now:         time.Now,
	}
}

// Extract scans entries for the access and refresh token credentials.
// The access token is mandatory, the refresh token is taken if present.
func (e *Extractor) Extract(ctx context.Context, entries []surface.StorageEntry) (*TokenPair, error) {
	accessToken := findCredential(entries, credentialTypeAccess)
	if accessToken == "" {
		return nil, ErrTokenAbsent
	}

	refreshToken := findCredential(entries, credentialTypeRefresh)
	if refreshToken == "" {
		logger.Debug(ctx, "Storage dump has no refresh token entry, refresh will not be possible")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    e.lifetimeOf(ctx, accessToken),
	}, nil
}

// lifetimeOf reads the exp claim from the access token without verifying
// its signature. The token was just handed to us by the identity provider
// over the authenticated surface, so the claim is trusted as-is; decode
// failures fall back to DefaultTokenLifetime.
func (e *Extractor) lifetimeOf(ctx context.Context, accessToken string) time.Duration {
	if expiresAt, ok := e.expiryCache.Get(accessToken); ok {
		return expiresAt.Sub(e.now())
	}

	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		logger.Debugf(ctx, "Failed to parse access token payload, assuming %s lifetime: %v",
			DefaultTokenLifetime, err)

		return DefaultTokenLifetime
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		logger.Debugf(ctx, "Access token has no usable exp claim, assuming %s lifetime",
			DefaultTokenLifetime)

		return DefaultTokenLifetime
	}

	e.expiryCache.Add(accessToken, expiry.Time)

	return expiry.Sub(e.now())
}

// findCredential returns the secret of the first entry whose key mentions
// the credential type and whose JSON payload confirms it.
func findCredential(entries []surface.StorageEntry, credentialType string) string {
	keyMarker := strings.ToLower(credentialType)

	for _, entry := range entries {
		if !strings.Contains(strings.ToLower(entry.Key), keyMarker) {
			continue
		}

		var credential storageCredential
		if err := json.Unmarshal([]byte(entry.Value), &credential); err != nil {
			continue
		}

		if credential.CredentialType != credentialType || credential.Secret == "" {
			continue
		}

		return credential.Secret
	}

	return ""
}
