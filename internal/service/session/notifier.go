package session

import (
	"context"

	"github.com/meridianlabs/meridian-desk/internal/logger"
)

// LogNotifier reports token lifecycle events through the application log.
// It satisfies refresh.Notifier.
type LogNotifier struct{}

// TokenRefreshed logs a successful background refresh.
func (LogNotifier) TokenRefreshed(host string) {
	logger.Debugf(context.Background(), "Token for '%s' was refreshed in the background", host)
}

// TokenRefreshFailed logs a transient refresh failure.
func (LogNotifier) TokenRefreshFailed(host string, err error) {
	logger.Warnf(context.Background(), "Background refresh for '%s' failed, will retry: %v", host, err)
}

// TokenExpired logs a terminal refresh rejection.
func (LogNotifier) TokenExpired(host string) {
	logger.Warnf(context.Background(),
		"Session for '%s' has fully expired, run 'meridian-desk login' to sign on again", host)
}
