package signon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/surface"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

var (
	// ErrAuthenticationRejected means the identity provider showed an
	// error page. Retrying with the same credential will not help.
	ErrAuthenticationRejected = errors.New("sign-on was rejected")

	// ErrCancelled means Cancel was called while the machine was running.
	ErrCancelled = errors.New("sign-on was cancelled")

	// ErrAutomationStalled means the flow made no further progress before
	// the deadline. The page may have changed shape, or the user walked
	// away mid-login.
	ErrAutomationStalled = errors.New("sign-on automation stalled")
)

// Config carries the machine's target and timing.
type Config struct {
	// Host is the host whose login flow is being driven.
	Host string
	// LandingPath marks a successful login when reached on Host.
	LandingPath string
	// LoginMode selects between provider-redirect and password login.
	LoginMode string
	// PollInterval is the observation cadence.
	PollInterval time.Duration
}

// Machine drives one login flow over a rendering surface.
// A Machine is single-use: create a new one for every sign-on attempt.
type Machine struct {
	surface   surface.Surface
	config    Config
	cancelled atomic.Bool

	mu    sync.Mutex
	stage Stage
}

// NewMachine creates a Machine in StageIdle.
func NewMachine(s surface.Surface, cfg Config) *Machine {
	return &Machine{
		surface: s,
		config:  cfg,
		stage:   StageIdle,
	}
}

// Stage returns the machine's current stage.
func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stage
}

// Cancel asks the machine to stop after its current tick.
// Safe to call from any goroutine.
func (m *Machine) Cancel() {
	m.cancelled.Store(true)
}

// Run polls the page until the landing path is reached, the provider
// rejects the login, or ctx expires. The credential's password is wiped
// as soon as it has been typed into the page; an empty username or
// password field simply hands that step over to the user.
func (m *Machine) Run(ctx context.Context, credential *vault.Credential) error {
	m.setStage(StageAwaitProviderButton)

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stage := m.Stage()
			m.setStage(StageFailed)

			return fmt.Errorf("no progress past stage '%s' on host '%s': %w",
				stage, m.config.Host, ErrAutomationStalled)
		case <-ticker.C:
		}

		if m.cancelled.Load() {
			m.setStage(StageFailed)

			return ErrCancelled
		}

		landed, err := m.reachedLanding(ctx)
		if err != nil {
			if errors.Is(err, surface.ErrSurfaceGone) {
				m.setStage(StageFailed)

				return fmt.Errorf("surface disappeared during sign-on: %w", err)
			}

			// Mid-navigation the page briefly has no answer. Retry.
			logger.Debugf(ctx, "Location check failed, retrying: %v", err)

			continue
		}

		if landed {
			m.setStage(StageDone)
			logger.Infof(ctx, "Sign-on to '%s' completed", m.config.Host)

			return nil
		}

		if rejectErr := m.checkRejection(ctx); rejectErr != nil {
			m.setStage(StageFailed)

			return rejectErr
		}

		if err = m.step(ctx, credential); err != nil {
			if errors.Is(err, surface.ErrSurfaceGone) {
				m.setStage(StageFailed)

				return fmt.Errorf("surface disappeared during sign-on: %w", err)
			}

			logger.Debugf(ctx, "Probe failed in stage '%s', retrying: %v", m.Stage(), err)
		}
	}
}

// step performs at most one side effect for the current stage and
// advances the stage on confirmed progress.
func (m *Machine) step(ctx context.Context, credential *vault.Credential) error {
	switch m.Stage() {
	case StageAwaitProviderButton:
		return m.stepProviderButton(ctx)
	case StageAwaitIdentifierField:
		return m.stepIdentifierField(ctx, credential)
	case StageAwaitPasswordField:
		return m.stepPasswordField(ctx, credential)
	default:
		// StageAwaitRedirect has no side effect, the landing check
		// at the top of the loop does the work.
		return nil
	}
}

func (m *Machine) stepProviderButton(ctx context.Context) error {
	result, err := m.surface.RunProbe(ctx, providerButtonScript)
	if err != nil {
		return err
	}

	if result != probeResultClicked {
		return nil
	}

	logger.Debugf(ctx, "Clicked the identity provider button on '%s'", m.config.Host)

	if m.config.LoginMode == config.LoginModeSSO {
		// The provider handles the rest, we only wait for the redirect.
		m.setStage(StageAwaitRedirect)
	} else {
		m.setStage(StageAwaitIdentifierField)
	}

	return nil
}

func (m *Machine) stepIdentifierField(ctx context.Context, credential *vault.Credential) error {
	if credential == nil || credential.Username == "" {
		// Left for the user to type, the password stage still watches
		// for its field in the meantime.
		logger.Info(ctx, "No stored username, fill it in the browser window")
		m.setStage(StageAwaitPasswordField)

		return nil
	}

	script := fmt.Sprintf(identifierFieldScriptTemplate, jsonString(credential.Username))

	result, err := m.surface.RunProbe(ctx, script)
	if err != nil {
		return err
	}

	if result == probeResultFilled {
		logger.Debug(ctx, "Submitted the username")
		m.setStage(StageAwaitPasswordField)
	}

	return nil
}

func (m *Machine) stepPasswordField(ctx context.Context, credential *vault.Credential) error {
	var password string
	if credential != nil {
		password = credential.Password.Reveal()
	}

	if password == "" {
		logger.Info(ctx, "No stored password, finish the login in the browser window")
		m.setStage(StageAwaitRedirect)

		return nil
	}

	script := fmt.Sprintf(passwordFieldScriptTemplate, jsonString(password))

	result, err := m.surface.RunProbe(ctx, script)
	if err != nil {
		return err
	}

	if result == probeResultFilled {
		// The secret has served its purpose, wipe it.
		credential.Password.Zero()

		logger.Debug(ctx, "Submitted the password")
		m.setStage(StageAwaitRedirect)
	}

	return nil
}

// checkRejection looks for a visible error banner once the provider
// button has been clicked.
func (m *Machine) checkRejection(ctx context.Context) error {
	if m.Stage() == StageAwaitProviderButton {
		return nil
	}

	result, err := m.surface.RunProbe(ctx, errorBannerScript)
	if err != nil || result == probeResultNoError {
		// A failed banner probe is not evidence of rejection.
		return nil
	}

	return fmt.Errorf("host '%s': %s: %w", m.config.Host, result, ErrAuthenticationRejected)
}

// reachedLanding reports whether the surface currently shows the landing
// path on the target host.
func (m *Machine) reachedLanding(ctx context.Context) (bool, error) {
	location, err := m.surface.CurrentLocation(ctx)
	if err != nil {
		return false, err
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return false, nil
	}

	return parsed.Host == m.config.Host &&
		strings.HasPrefix(parsed.Path, m.config.LandingPath), nil
}

func (m *Machine) setStage(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stage = stage
}

// jsonString renders s as a JavaScript string literal.
func jsonString(s string) string {
	encoded, _ := json.Marshal(s)

	return string(encoded)
}
