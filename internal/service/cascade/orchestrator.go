package cascade

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/surface"
	"github.com/meridianlabs/meridian-desk/internal/token"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

var (
	// ErrCascadeTimeout means the secondary host never settled on its
	// protected page, either in time or within the allowed redirect
	// hops. Primary tokens acquired earlier stay valid.
	ErrCascadeTimeout = errors.New("secondary host acquisition did not complete")

	// ErrCascadeInProgress guards against overlapping runs.
	ErrCascadeInProgress = errors.New("a sign-on cascade is already running")
)

// State is a snapshot of the cascade's progress within one session.
type State struct {
	SessionID          string
	InProgress         bool
	PrimaryAcquired    bool
	SecondaryAttempted bool
	SecondaryAcquired  bool
}

// SignOn completes an interactive login on the current page.
type SignOn interface {
	Run(ctx context.Context, credential *vault.Credential) error
}

// SignOnFactory builds a fresh SignOn per cascade run, sign-on machines
// are single-use.
type SignOnFactory func() SignOn

// Config carries the cascade's hosts and limits.
type Config struct {
	PrimaryHost            string
	SecondaryHost          string
	PrimaryLandingPath     string
	SecondaryProtectedPath string

	// PollInterval is the location observation cadence.
	PollInterval time.Duration
	// MaxTransientHops bounds the redirect chain on the secondary leg.
	MaxTransientHops int
	// SecondaryTimeout bounds the whole secondary leg.
	SecondaryTimeout time.Duration
	// TokenSettleWindow bounds how long a host gets to drop its token
	// pair into local storage once its page has settled.
	TokenSettleWindow time.Duration
}

// Orchestrator runs the two-host acquisition flow.
type Orchestrator struct {
	surface   surface.Surface
	store     *token.Store
	extractor *token.Extractor
	newSignOn SignOnFactory
	config    Config

	mu    sync.Mutex
	state State

	locations chan string
	pageLoads chan struct{}
	watchOnce sync.Once
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	s surface.Surface,
	store *token.Store,
	extractor *token.Extractor,
	newSignOn SignOnFactory,
	config Config,
) *Orchestrator {
	return &Orchestrator{
		surface:   s,
		store:     store,
		extractor: extractor,
		newSignOn: newSignOn,
		config:    config,
		locations: make(chan string, 16),
		pageLoads: make(chan struct{}, 1),
	}
}

// State returns a snapshot of the cascade's progress.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Reset forgets the current session. The next Run starts from scratch,
// including a fresh secondary attempt.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = State{}
}

// Run signs on to the primary host and then cascades to the secondary.
// On ErrCascadeTimeout the primary tokens are already stored and usable;
// every other error means the session is not established.
func (o *Orchestrator) Run(ctx context.Context, credential *vault.Credential) error {
	if err := o.begin(); err != nil {
		return err
	}

	defer o.finish()

	if err := o.acquirePrimary(ctx, credential); err != nil {
		return err
	}

	if err := o.acquireSecondary(ctx); err != nil {
		return err
	}

	return o.returnToPrimary(ctx)
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InProgress {
		return ErrCascadeInProgress
	}

	// A session lives until Reset, re-running inside it keeps the
	// secondary attempt accounting.
	if o.state.SessionID == "" {
		o.state.SessionID = uuid.NewString()
	}

	o.state.InProgress = true

	return nil
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.InProgress = false
}

// acquirePrimary opens the primary host, completes the login and stores
// the extracted token pair.
func (o *Orchestrator) acquirePrimary(ctx context.Context, credential *vault.Credential) error {
	landingURL := fmt.Sprintf("https://%s%s", o.config.PrimaryHost, o.config.PrimaryLandingPath)

	if err := o.surface.Navigate(ctx, landingURL); err != nil {
		return fmt.Errorf("failed to open '%s': %w", o.config.PrimaryHost, err)
	}

	if err := o.newSignOn().Run(ctx, credential); err != nil {
		return err
	}

	if err := o.extractAndStore(ctx, o.config.PrimaryHost); err != nil {
		return err
	}

	o.mu.Lock()
	o.state.PrimaryAcquired = true
	o.mu.Unlock()

	logger.Infof(ctx, "Acquired tokens for primary host '%s'", o.config.PrimaryHost)

	return nil
}

// acquireSecondary rides the primary session through the secondary
// host's redirect chain. It runs at most once per session.
func (o *Orchestrator) acquireSecondary(ctx context.Context) error {
	o.mu.Lock()
	if o.state.SecondaryAttempted {
		o.mu.Unlock()
		logger.Debugf(ctx, "Secondary host '%s' was already attempted this session", o.config.SecondaryHost)

		return nil
	}

	o.state.SecondaryAttempted = true
	o.mu.Unlock()

	o.watchLocations()

	protectedURL := fmt.Sprintf("https://%s%s", o.config.SecondaryHost, o.config.SecondaryProtectedPath)

	if err := o.surface.Navigate(ctx, protectedURL); err != nil {
		return fmt.Errorf("%w: failed to open '%s': %v",
			ErrCascadeTimeout, o.config.SecondaryHost, err)
	}

	if err := o.awaitSecondarySettled(ctx); err != nil {
		return err
	}

	if err := o.extractAndStore(ctx, o.config.SecondaryHost); err != nil {
		return fmt.Errorf("%w: %v", ErrCascadeTimeout, err)
	}

	o.mu.Lock()
	o.state.SecondaryAcquired = true
	o.mu.Unlock()

	logger.Infof(ctx, "Acquired tokens for secondary host '%s'", o.config.SecondaryHost)

	return nil
}

// watchLocations subscribes to location changes once per Orchestrator.
// The handler stays registered across sessions, stale events are simply
// drained before each wait.
func (o *Orchestrator) watchLocations() {
	o.watchOnce.Do(func() {
		o.surface.OnLocationChanged(func(location string) {
			select {
			case o.locations <- location:
			default:
			}
		})

		// Page loads nudge the wait loop to re-check the location right
		// away instead of waiting out the poll interval.
		o.surface.OnPageLoaded(func() {
			select {
			case o.pageLoads <- struct{}{}:
			default:
			}
		})
	})
}

// awaitSecondarySettled waits for the surface to arrive at the secondary
// protected page, counting each distinct intermediate location as one
// redirect hop. Duplicate events for the same location do not count.
func (o *Orchestrator) awaitSecondarySettled(ctx context.Context) error {
	// Drop events left over from an earlier wait.
	for {
		select {
		case <-o.locations:
			continue
		default:
		}

		break
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.config.SecondaryTimeout)
	defer cancel()

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	var (
		hops         int
		lastLocation string
	)

	for {
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("%w: still at '%s' after %s",
				ErrCascadeTimeout, lastLocation, o.config.SecondaryTimeout)
		case location := <-o.locations:
			settled, err := o.observeHop(ctx, location, &hops, &lastLocation)
			if err != nil || settled {
				return err
			}
		case <-o.pageLoads:
			location, err := o.surface.CurrentLocation(waitCtx)
			if err != nil {
				continue
			}

			settled, err := o.observeHop(ctx, location, &hops, &lastLocation)
			if err != nil || settled {
				return err
			}
		case <-ticker.C:
			// Events can be missed around navigation, poll as a backstop.
			location, err := o.surface.CurrentLocation(waitCtx)
			if err != nil {
				continue
			}

			settled, err := o.observeHop(ctx, location, &hops, &lastLocation)
			if err != nil || settled {
				return err
			}
		}
	}
}

// observeHop accounts one observed location. It reports settled=true on
// arrival at the secondary protected page.
func (o *Orchestrator) observeHop(ctx context.Context, location string, hops *int, lastLocation *string) (bool, error) {
	if location == *lastLocation {
		return false, nil
	}

	*lastLocation = location

	if o.isSecondaryProtected(location) {
		return true, nil
	}

	*hops++

	logger.Debugf(ctx, "Redirect hop %d/%d: %s", *hops, o.config.MaxTransientHops, location)

	if *hops > o.config.MaxTransientHops {
		return false, fmt.Errorf("%w: exceeded %d redirect hops at '%s'",
			ErrCascadeTimeout, o.config.MaxTransientHops, location)
	}

	return false, nil
}

func (o *Orchestrator) isSecondaryProtected(location string) bool {
	parsed, err := url.Parse(location)
	if err != nil {
		return false
	}

	return parsed.Host == o.config.SecondaryHost &&
		strings.HasPrefix(parsed.Path, o.config.SecondaryProtectedPath)
}

// extractAndStore pulls the token pair out of the current page's local
// storage and persists it for host. A dump with no access token entry is
// re-read at the poll interval for up to TokenSettleWindow, the surface
// may still be finishing its own token exchange after the page settles.
func (o *Orchestrator) extractAndStore(ctx context.Context, host string) error {
	pair, err := o.awaitTokenPair(ctx, host)
	if err != nil {
		return err
	}

	if err = o.store.Save(host, pair.AccessToken, pair.RefreshToken, pair.ExpiresIn); err != nil {
		return fmt.Errorf("failed to store tokens for '%s': %w", host, err)
	}

	return nil
}

func (o *Orchestrator) awaitTokenPair(ctx context.Context, host string) (*token.TokenPair, error) {
	deadline := time.Now().Add(o.config.TokenSettleWindow)

	for {
		entries, err := o.surface.DumpLocalStorage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read local storage on '%s': %w", host, err)
		}

		pair, err := o.extractor.Extract(ctx, entries)
		if err == nil {
			return pair, nil
		}

		if !errors.Is(err, token.ErrTokenAbsent) || !time.Now().Before(deadline) {
			return nil, fmt.Errorf("host '%s': %w", host, err)
		}

		logger.Debugf(ctx, "No access token on '%s' yet, re-reading local storage", host)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("host '%s': %w", host, err)
		case <-time.After(o.config.PollInterval):
		}
	}
}

// returnToPrimary brings the surface back to the primary landing page so
// the user is not left staring at the secondary host.
func (o *Orchestrator) returnToPrimary(ctx context.Context) error {
	landingURL := fmt.Sprintf("https://%s%s", o.config.PrimaryHost, o.config.PrimaryLandingPath)

	if err := o.surface.Navigate(ctx, landingURL); err != nil {
		logger.Warnf(ctx, "Failed to return to '%s': %v", o.config.PrimaryHost, err)
	}

	return nil
}
