package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/service/cascade"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

const spinnerRedrawInterval = 100 * time.Millisecond

// Login opens the browser, drives the sign-on cascade and stores the
// acquired tokens. With force the cascade runs even when valid tokens
// are already stored.
func (a *App) Login(ctx context.Context, force bool) error {
	a.resolveSource(ctx)

	if err := a.surface.Start(ctx); err != nil {
		return fmt.Errorf("failed to start the browser: %w", err)
	}

	defer a.surface.Close(ctx)

	err := a.ensureTokensWithSpinner(ctx, force)

	switch {
	case errors.Is(err, cascade.ErrCascadeTimeout):
		// The primary session is established, only the reports host
		// is missing. Not worth failing the whole login over.
		logger.Warnf(ctx, "Signed on to '%s', but '%s' could not be reached: %v",
			a.cfg.PrimaryHost, a.cfg.SecondaryHost, err)
	case err != nil:
		return err
	}

	a.rememberResolvedSource(ctx)

	return nil
}

// ensureTokensWithSpinner runs the cascade while showing a spinner, the
// interactive login can take as long as the user needs.
func (a *App) ensureTokensWithSpinner(ctx context.Context, force bool) error {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Waiting for sign-on to complete..."),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan error, 1)

	go func() {
		done <- a.manager.EnsureTokens(ctx, force)
	}()

	ticker := time.NewTicker(spinnerRedrawInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			_ = spinner.Finish()

			return err
		case <-ticker.C:
			_ = spinner.Add(1)
		}
	}
}

// rememberResolvedSource records the backend the resolver picked so the
// next run skips auto-detection.
func (a *App) rememberResolvedSource(ctx context.Context) {
	if a.cfg.VaultPreference != config.VaultPreferenceAuto || a.source == vault.SourceNone {
		return
	}

	a.cfg.VaultPreference = string(a.source)

	if err := config.SaveConfig(a.cfg); err != nil {
		logger.Warnf(ctx, "Failed to record the credential backend in the config: %v", err)
	}
}
