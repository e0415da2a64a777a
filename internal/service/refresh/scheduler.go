package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/token"
)

//go:generate $MOCKGEN -source=scheduler.go -destination=mocks/notifier_mock.go

// Notifier receives token lifecycle events. Implementations must be
// cheap and non-blocking, they are called from scheduler goroutines.
type Notifier interface {
	// TokenRefreshed fires after a successful background refresh.
	TokenRefreshed(host string)
	// TokenRefreshFailed fires on a transient failure. The record is
	// kept and the refresh is retried on a later tick.
	TokenRefreshFailed(host string, err error)
	// TokenExpired fires when the refresh token was permanently
	// rejected and the host's record has been cleared.
	TokenExpired(host string)
}

// NopNotifier ignores all events.
type NopNotifier struct{}

func (NopNotifier) TokenRefreshed(string)            {}
func (NopNotifier) TokenRefreshFailed(string, error) {}
func (NopNotifier) TokenExpired(string)              {}

// SchedulerConfig carries the scheduler's timing knobs.
type SchedulerConfig struct {
	// Interval is how often stored records are inspected.
	Interval time.Duration
	// Margin is subtracted from each record's expiry when deciding
	// whether it still counts as valid.
	Margin time.Duration
	// Timeout bounds a single refresh attempt.
	Timeout time.Duration
}

// Scheduler drives background refreshes. At most one refresh per host is
// in flight at any time; transient failures are retried forever on
// subsequent ticks, terminal ones clear the record.
type Scheduler struct {
	store     *token.Store
	refresher Refresher
	notifier  Notifier
	config    SchedulerConfig

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a Scheduler. A nil notifier disables notifications.
func NewScheduler(
	store *token.Store,
	refresher Refresher,
	notifier Notifier,
	config SchedulerConfig,
) *Scheduler {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Scheduler{
		store:     store,
		refresher: refresher,
		notifier:  notifier,
		config:    config,
		inFlight:  make(map[string]struct{}),
	}
}

// Run ticks until ctx is cancelled, then waits for in-flight refreshes
// to drain.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	logger.Debugf(ctx, "Token refresh scheduler started, checking every %s", s.config.Interval)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Debug(ctx, "Token refresh scheduler stopped")

			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick inspects every stored record once and launches refreshes for the
// hosts that need one. It is exported so callers can force an immediate
// pass without waiting for the interval.
func (s *Scheduler) Tick(ctx context.Context) {
	for _, host := range s.store.Hosts() {
		if s.store.IsValid(host, s.config.Margin) {
			continue
		}

		record, err := s.store.Get(host)
		if err != nil {
			continue
		}

		if record.RefreshToken == "" {
			logger.Warnf(ctx, "Token for '%s' is expiring and has no refresh token, sign-on required", host)
			continue
		}

		if !s.markInFlight(host) {
			continue
		}

		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			defer s.clearInFlight(host)

			s.refreshHost(ctx, host, record)
		}()
	}
}

// refreshHost performs one refresh attempt and applies its outcome.
// A response is dropped if the record changed while the request was in
// flight, so a concurrent sign-on always wins over a stale refresh.
func (s *Scheduler) refreshHost(ctx context.Context, host string, record token.Record) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.refresher.Refresh(refreshCtx, host, record.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenExpired) {
			logger.Warnf(ctx, "Refresh token for '%s' was rejected, clearing stored tokens: %v", host, err)

			if clearErr := s.store.Clear(host); clearErr != nil {
				logger.Errorf(ctx, "Failed to clear tokens for '%s': %v", host, clearErr)
			}

			s.notifier.TokenExpired(host)

			return
		}

		logger.Warnf(ctx, "Transient refresh failure for '%s', will retry: %v", host, err)
		s.notifier.TokenRefreshFailed(host, err)

		return
	}

	current, err := s.store.Get(host)
	if err != nil || !current.IssuedAt.Equal(record.IssuedAt) {
		logger.Debugf(ctx, "Dropping stale refresh response for '%s'", host)

		return
	}

	if err = s.store.Save(host, result.AccessToken, result.RefreshToken, result.ExpiresIn); err != nil {
		logger.Errorf(ctx, "Failed to store refreshed tokens for '%s': %v", host, err)
		s.notifier.TokenRefreshFailed(host, err)

		return
	}

	logger.Debugf(ctx, "Refreshed token for '%s', valid for %s", host, result.ExpiresIn)
	s.notifier.TokenRefreshed(host)
}

func (s *Scheduler) markInFlight(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[host]; busy {
		return false
	}

	s.inFlight[host] = struct{}{}

	return true
}

func (s *Scheduler) clearInFlight(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, host)
}
