// Package app wires the subsystem together and backs the CLI commands.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/service/cascade"
	"github.com/meridianlabs/meridian-desk/internal/service/refresh"
	"github.com/meridianlabs/meridian-desk/internal/service/session"
	"github.com/meridianlabs/meridian-desk/internal/service/signon"
	"github.com/meridianlabs/meridian-desk/internal/surface"
	"github.com/meridianlabs/meridian-desk/internal/token"
	transporthttp "github.com/meridianlabs/meridian-desk/internal/transport/http"
	"github.com/meridianlabs/meridian-desk/internal/utils"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

const (
	// secondaryLegTimeout bounds the secondary host's redirect chain.
	secondaryLegTimeout = 90 * time.Second

	// tokenSettleWindow bounds how long a signed-on host gets to finish
	// its token exchange before an empty storage dump counts as failure.
	tokenSettleWindow = 5 * time.Second
)

// App owns every long-lived component and exposes one method per command.
type App struct {
	cfg          *config.Config
	vault        *vault.Vault
	store        *token.Store
	surface      *surface.RodSurface
	orchestrator *cascade.Orchestrator
	manager      *session.Manager

	// source is the credential backend resolved for this run.
	source vault.Source
}

// New builds the application from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	tokenPath := cfg.ResolvedTokenFilePath()

	store, err := token.NewStore(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open the token store: %w", err)
	}

	surf := surface.NewRodSurface()

	machineConfig := signon.Config{
		Host:         cfg.PrimaryHost,
		LandingPath:  cfg.PrimaryLandingPath,
		LoginMode:    cfg.LoginMode,
		PollInterval: cfg.ParsedPollInterval,
	}

	orchestrator := cascade.NewOrchestrator(
		surf,
		store,
		token.NewExtractor(),
		func() cascade.SignOn { return signon.NewMachine(surf, machineConfig) },
		cascade.Config{
			PrimaryHost:            cfg.PrimaryHost,
			SecondaryHost:          cfg.SecondaryHost,
			PrimaryLandingPath:     cfg.PrimaryLandingPath,
			SecondaryProtectedPath: cfg.SecondaryProtectedPath,
			PollInterval:           cfg.ParsedPollInterval,
			MaxTransientHops:       utils.SafeInt64ToInt(cfg.CascadeMaxTransientHops),
			SecondaryTimeout:       secondaryLegTimeout,
			TokenSettleWindow:      tokenSettleWindow,
		},
	)

	scheduler := refresh.NewScheduler(
		store,
		refresh.NewHTTPRefresher(transporthttp.DefaultUserAgent, config.DefaultMaxLogLength),
		session.LogNotifier{},
		refresh.SchedulerConfig{
			Interval: cfg.ParsedRefreshInterval,
			Margin:   cfg.ParsedRefreshMargin,
			Timeout:  cfg.ParsedRefreshTimeout,
		},
	)

	a := &App{
		cfg:          cfg,
		vault:        vault.NewVault(filepath.Dir(tokenPath)),
		store:        store,
		surface:      surf,
		orchestrator: orchestrator,
		source:       vault.SourceNone,
	}

	a.manager = session.NewManager(cfg, store, orchestrator, scheduler, a.loadCredential)

	return a, nil
}

// loadCredential pulls the sign-on credential from the backend resolved
// during Login.
func (a *App) loadCredential(ctx context.Context) (*vault.Credential, error) {
	if a.source == vault.SourceNone {
		return nil, vault.ErrCredentialNotFound
	}

	backend, err := a.vault.Store(a.source)
	if err != nil {
		return nil, err
	}

	return backend.Load(ctx)
}

// resolveSource probes the backends and picks the credential source for
// this run, warning when the legacy plaintext file is about to be used.
func (a *App) resolveSource(ctx context.Context) *vault.HealthCheckResult {
	health := a.vault.HealthCheck(ctx)
	a.source = vault.ResolveSource(a.cfg.VaultPreference, health)

	if a.source == vault.SourceLegacyFile && !a.vault.LegacyWarningDismissed() {
		a.vault.WarnLegacyUse(ctx)
	}

	return health
}
