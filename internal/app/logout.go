package app

import (
	"context"
	"fmt"

	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

// Logout clears all stored tokens and forgets the cascade session.
// With deleteCredential the stored sign-on credential is removed too.
func (a *App) Logout(ctx context.Context, deleteCredential bool) error {
	if err := a.manager.Logout(ctx); err != nil {
		return err
	}

	if !deleteCredential {
		return nil
	}

	a.resolveSource(ctx)

	if a.source == vault.SourceNone {
		logger.Debug(ctx, "No credential backend in use, nothing to delete")

		return nil
	}

	backend, err := a.vault.Store(a.source)
	if err != nil {
		return err
	}

	if err = backend.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete the stored credential: %w", err)
	}

	logger.Infof(ctx, "Deleted the stored credential from the '%s' backend", a.source)

	return nil
}
