package signon_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/service/signon"
	mock_surface "github.com/meridianlabs/meridian-desk/internal/surface/mocks"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

const (
	testHost        = "app.meridian.io"
	testLoginURL    = "https://login.meridian-id.io/signin"
	testLandingURL  = "https://app.meridian.io/dashboard"
	testRunDeadline = 3 * time.Second
)

func testMachineConfig(loginMode string) signon.Config {
	return signon.Config{
		Host:         testHost,
		LandingPath:  "/dashboard",
		LoginMode:    loginMode,
		PollInterval: 5 * time.Millisecond,
	}
}

// loginPage simulates the identity provider: probes mutate its flags and
// the reported location flips to the landing URL once login is complete.
type loginPage struct {
	providerClicked  atomic.Bool
	identifierFilled atomic.Bool
	passwordFilled   atomic.Bool
	loginComplete    atomic.Bool

	errorBanner string
	lastSecret  atomic.Value
}

func (p *loginPage) location() string {
	if p.loginComplete.Load() {
		return testLandingURL
	}

	return testLoginURL
}

func (p *loginPage) runProbe(script string) string {
	switch {
	case strings.Contains(script, "provider-signin"):
		p.providerClicked.Store(true)

		return "clicked"
	case strings.Contains(script, "loginfmt"):
		p.identifierFilled.Store(true)

		return "filled"
	case strings.Contains(script, "passwd"):
		p.passwordFilled.Store(true)
		p.lastSecret.Store(script)
		p.loginComplete.Store(true)

		return "filled"
	case strings.Contains(script, "errorText"):
		if p.errorBanner != "" && p.providerClicked.Load() {
			return p.errorBanner
		}

		return "none"
	default:
		return "absent"
	}
}

func mockSurfaceFor(ctrl *gomock.Controller, page *loginPage) *mock_surface.MockSurface {
	s := mock_surface.NewMockSurface(ctrl)

	s.EXPECT().
		CurrentLocation(gomock.Any()).
		DoAndReturn(func(context.Context) (string, error) {
			return page.location(), nil
		}).
		AnyTimes()

	s.EXPECT().
		RunProbe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, script string) (string, error) {
			return page.runProbe(script), nil
		}).
		AnyTimes()

	return s
}

func runMachine(t *testing.T, machine *signon.Machine, credential *vault.Credential) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testRunDeadline)
	defer cancel()

	return machine.Run(ctx, credential)
}

func TestMachine_PasswordFlow(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	page := &loginPage{}

	machine := signon.NewMachine(mockSurfaceFor(ctrl, page), testMachineConfig(config.LoginModePassword))

	credential := &vault.Credential{
		Username: "analyst@meridian.io",
		Password: vault.SecretFromString("hunter2"),
	}

	err := runMachine(t, machine, credential)
	require.NoError(t, err)

	assert.Equal(t, signon.StageDone, machine.Stage())
	assert.True(t, page.providerClicked.Load())
	assert.True(t, page.identifierFilled.Load())
	assert.True(t, page.passwordFilled.Load())

	// The typed password must have reached the page and then been wiped.
	script, _ := page.lastSecret.Load().(string)
	assert.Contains(t, script, `"hunter2"`)
	assert.Empty(t, credential.Password.Reveal())
}

func TestMachine_SSOFlowSkipsCredentialFields(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	page := &loginPage{}

	machine := signon.NewMachine(mockSurfaceFor(ctrl, page), testMachineConfig(config.LoginModeSSO))

	// The provider completes the login on its own after the click.
	go func() {
		for !page.providerClicked.Load() {
			time.Sleep(time.Millisecond)
		}

		page.loginComplete.Store(true)
	}()

	err := runMachine(t, machine, &vault.Credential{Username: "ignored"})
	require.NoError(t, err)

	assert.Equal(t, signon.StageDone, machine.Stage())
	assert.False(t, page.identifierFilled.Load())
	assert.False(t, page.passwordFilled.Load())
}

func TestMachine_AlreadySignedIn(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	page := &loginPage{}
	page.loginComplete.Store(true)

	machine := signon.NewMachine(mockSurfaceFor(ctrl, page), testMachineConfig(config.LoginModePassword))

	err := runMachine(t, machine, &vault.Credential{})
	require.NoError(t, err)
	assert.Equal(t, signon.StageDone, machine.Stage())
	assert.False(t, page.providerClicked.Load())
}

func TestMachine_MissingCredentialFallsBackToManualLogin(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	page := &loginPage{}

	machine := signon.NewMachine(mockSurfaceFor(ctrl, page), testMachineConfig(config.LoginModePassword))

	// The user types everything by hand and eventually lands.
	go func() {
		for !page.providerClicked.Load() {
			time.Sleep(time.Millisecond)
		}

		time.Sleep(20 * time.Millisecond)
		page.loginComplete.Store(true)
	}()

	err := runMachine(t, machine, &vault.Credential{})
	require.NoError(t, err)

	assert.Equal(t, signon.StageDone, machine.Stage())
	assert.False(t, page.identifierFilled.Load())
	assert.False(t, page.passwordFilled.Load())
}

func TestMachine_RejectionSurfacesHostDiagnostic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	page := &loginPage{errorBanner: "Your account or password is incorrect."}

	machine := signon.NewMachine(mockSurfaceFor(ctrl, page), testMachineConfig(config.LoginModePassword))

	credential := &vault.Credential{
		Username: "analyst@meridian.io",
		Password: vault.SecretFromString("wrong"),
	}

	err := runMachine(t, machine, credential)
	require.ErrorIs(t, err, signon.ErrAuthenticationRejected)
	assert.Contains(t, err.Error(), testHost)
	assert.Contains(t, err.Error(), "incorrect")
	assert.Equal(t, signon.StageFailed, machine.Stage())
}

func TestMachine_StallsWhenPageNeverChanges(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	s := mock_surface.NewMockSurface(ctrl)
	s.EXPECT().
		CurrentLocation(gomock.Any()).
		Return(testLoginURL, nil).
		AnyTimes()
	s.EXPECT().
		RunProbe(gomock.Any(), gomock.Any()).
		Return("absent", nil).
		AnyTimes()

	machine := signon.NewMachine(s, testMachineConfig(config.LoginModePassword))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := machine.Run(ctx, &vault.Credential{})
	require.ErrorIs(t, err, signon.ErrAutomationStalled)
	assert.Contains(t, err.Error(), signon.StageAwaitProviderButton.String())
	assert.Equal(t, signon.StageFailed, machine.Stage())
}

func TestMachine_Cancel(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	page := &loginPage{}

	s := mock_surface.NewMockSurface(ctrl)
	s.EXPECT().
		CurrentLocation(gomock.Any()).
		DoAndReturn(func(context.Context) (string, error) {
			return page.location(), nil
		}).
		AnyTimes()
	s.EXPECT().
		RunProbe(gomock.Any(), gomock.Any()).
		Return("absent", nil).
		AnyTimes()

	machine := signon.NewMachine(s, testMachineConfig(config.LoginModePassword))
	machine.Cancel()

	err := runMachine(t, machine, &vault.Credential{})
	require.ErrorIs(t, err, signon.ErrCancelled)
	assert.Equal(t, signon.StageFailed, machine.Stage())
}

func TestMachine_TransientProbeFailuresAreRetried(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	page := &loginPage{}

	var locationCalls atomic.Int64

	s := mock_surface.NewMockSurface(ctrl)
	s.EXPECT().
		CurrentLocation(gomock.Any()).
		DoAndReturn(func(context.Context) (string, error) {
			// The first few observations hit a mid-navigation page.
			if locationCalls.Add(1) <= 3 {
				return "", assert.AnError
			}

			return page.location(), nil
		}).
		AnyTimes()
	s.EXPECT().
		RunProbe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, script string) (string, error) {
			return page.runProbe(script), nil
		}).
		AnyTimes()

	machine := signon.NewMachine(s, testMachineConfig(config.LoginModePassword))

	credential := &vault.Credential{
		Username: "analyst@meridian.io",
		Password: vault.SecretFromString("hunter2"),
	}

	err := runMachine(t, machine, credential)
	require.NoError(t, err)
	assert.Equal(t, signon.StageDone, machine.Stage())
}
