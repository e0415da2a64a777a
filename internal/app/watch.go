package app

import (
	"context"

	"github.com/meridianlabs/meridian-desk/internal/logger"
)

// Watch runs the background refresh loop until ctx is cancelled.
// Tokens must have been acquired beforehand with Login.
func (a *App) Watch(ctx context.Context) error {
	hosts := a.store.Hosts()
	if len(hosts) == 0 {
		logger.Warn(ctx, "No stored tokens to keep fresh, run 'meridian-desk login' first")

		return nil
	}

	logger.Infof(ctx, "Keeping tokens fresh for %d host(s), press Ctrl+C to stop", len(hosts))

	a.manager.Start(ctx)

	<-ctx.Done()

	a.manager.Close()

	return nil
}
