package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/service/cascade"
	"github.com/meridianlabs/meridian-desk/internal/service/refresh"
	"github.com/meridianlabs/meridian-desk/internal/token"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

// ErrNoValidToken means the host has no token that is still usable.
// The caller should trigger EnsureTokens.
var ErrNoValidToken = errors.New("no valid token for host")

// TokenAcquirer runs the interactive acquisition flow.
// *cascade.Orchestrator is the production implementation.
type TokenAcquirer interface {
	Run(ctx context.Context, credential *vault.Credential) error
	Reset()
	State() cascade.State
}

// CredentialLoader fetches the stored sign-on credential.
// The manager zeroes whatever it returns.
type CredentialLoader func(ctx context.Context) (*vault.Credential, error)

// Manager coordinates token access, acquisition and background refresh.
type Manager struct {
	config         *config.Config
	store          *token.Store
	acquirer       TokenAcquirer
	scheduler      *refresh.Scheduler
	loadCredential CredentialLoader

	mu          sync.Mutex
	stopRefresh context.CancelFunc
	refreshDone chan struct{}
}

// NewManager creates a Manager. The scheduler may be nil when background
// refresh is not wanted, Start then does nothing.
func NewManager(
	cfg *config.Config,
	store *token.Store,
	acquirer TokenAcquirer,
	scheduler *refresh.Scheduler,
	loadCredential CredentialLoader,
) *Manager {
	return &Manager{
		config:         cfg,
		store:          store,
		acquirer:       acquirer,
		scheduler:      scheduler,
		loadCredential: loadCredential,
	}
}

// Start launches the background refresh loop. Idempotent.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.scheduler == nil || m.stopRefresh != nil {
		return
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	m.stopRefresh = cancel
	m.refreshDone = make(chan struct{})

	go func() {
		defer close(m.refreshDone)
		m.scheduler.Run(refreshCtx)
	}()
}

// GetCurrentToken returns a still-valid access token for host.
func (m *Manager) GetCurrentToken(host string) (string, error) {
	if !m.store.IsValid(host, 0) {
		return "", fmt.Errorf("host '%s': %w", host, ErrNoValidToken)
	}

	record, err := m.store.Get(host)
	if err != nil {
		return "", fmt.Errorf("host '%s': %w", host, ErrNoValidToken)
	}

	return record.AccessToken, nil
}

// EnsureTokens makes sure both hosts hold valid tokens, running the
// interactive cascade when they do not. With force the cascade runs
// regardless. A cascade timeout is returned to the caller but leaves
// the primary tokens in place.
func (m *Manager) EnsureTokens(ctx context.Context, force bool) error {
	if !force && m.hasValidTokens() {
		logger.Debug(ctx, "Both hosts already hold valid tokens")

		return nil
	}

	credential, err := m.loadCredential(ctx)
	if err != nil && !errors.Is(err, vault.ErrCredentialNotFound) {
		return fmt.Errorf("failed to load sign-on credential: %w", err)
	}

	if credential == nil {
		// Interactive fallback: the user completes the form manually.
		credential = &vault.Credential{}
	}

	defer credential.Zero()

	return m.acquirer.Run(ctx, credential)
}

// IsLoginComplete reports whether the primary host was signed on during
// this session.
func (m *Manager) IsLoginComplete() bool {
	return m.acquirer.State().PrimaryAcquired
}

// Logout clears all stored tokens and forgets the cascade session.
func (m *Manager) Logout(ctx context.Context) error {
	m.acquirer.Reset()

	if err := m.store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear stored tokens: %w", err)
	}

	logger.Info(ctx, "Signed out, all stored tokens cleared")

	return nil
}

// Close stops the background refresh loop and waits for it to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.stopRefresh
	done := m.refreshDone
	m.stopRefresh = nil
	m.refreshDone = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}

	stop()
	<-done
}

func (m *Manager) hasValidTokens() bool {
	margin := m.config.ParsedRefreshMargin

	return m.store.IsValid(m.config.PrimaryHost, margin) &&
		m.store.IsValid(m.config.SecondaryHost, margin)
}
