package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// validTestConfig returns a configuration that passes validation.
func validTestConfig() *Config {
	return &Config{
		PrimaryHost:             "app.meridian.io",
		SecondaryHost:           "reports.meridian.io",
		PrimaryLandingPath:      "/dashboard",
		SecondaryProtectedPath:  "/reports/overview",
		LoginMode:               LoginModeSSO,
		VaultPreference:         VaultPreferenceAuto,
		PollInterval:            "400ms",
		RefreshInterval:         "60s",
		RefreshMargin:           "5m",
		RefreshTimeout:          "30s",
		CascadeMaxTransientHops: 3,
		LogLevel:                "info",
	}
}

// TestValidateConfig tests the ValidateConfig function.
func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectedErr error
	}{
		{
			name:        "valid config",
			mutate:      func(*Config) {},
			expectedErr: nil,
		},
		{
			name:        "empty primary host",
			mutate:      func(c *Config) { c.PrimaryHost = "  " },
			expectedErr: ErrEmptyPrimaryHost,
		},
		{
			name:        "empty secondary host",
			mutate:      func(c *Config) { c.SecondaryHost = "" },
			expectedErr: ErrEmptySecondaryHost,
		},
		{
			name: "identical hosts",
			mutate: func(c *Config) {
				c.SecondaryHost = c.PrimaryHost
			},
			expectedErr: ErrSameHosts,
		},
		{
			name:        "landing path without leading slash",
			mutate:      func(c *Config) { c.PrimaryLandingPath = "dashboard" },
			expectedErr: ErrInvalidLandingPath,
		},
		{
			name:        "protected path without leading slash",
			mutate:      func(c *Config) { c.SecondaryProtectedPath = "reports" },
			expectedErr: ErrInvalidProtectedPath,
		},
		{
			name:        "unknown login mode",
			mutate:      func(c *Config) { c.LoginMode = "magic-link" },
			expectedErr: ErrUnknownLoginMode,
		},
		{
			name:        "unknown vault preference",
			mutate:      func(c *Config) { c.VaultPreference = "cloud" },
			expectedErr: ErrUnknownVaultPreference,
		},
		{
			name:        "poll interval too short",
			mutate:      func(c *Config) { c.PollInterval = "10ms" },
			expectedErr: ErrInvalidPollInterval,
		},
		{
			name:        "poll interval too long",
			mutate:      func(c *Config) { c.PollInterval = "30s" },
			expectedErr: ErrInvalidPollInterval,
		},
		{
			name:        "negative refresh interval",
			mutate:      func(c *Config) { c.RefreshInterval = "-1s" },
			expectedErr: ErrInvalidRefreshInterval,
		},
		{
			name:        "negative refresh margin",
			mutate:      func(c *Config) { c.RefreshMargin = "-5m" },
			expectedErr: ErrInvalidRefreshMargin,
		},
		{
			name:        "zero refresh timeout",
			mutate:      func(c *Config) { c.RefreshTimeout = "0s" },
			expectedErr: ErrInvalidRefreshTimeout,
		},
		{
			name:        "zero transient hops",
			mutate:      func(c *Config) { c.CascadeMaxTransientHops = 0 },
			expectedErr: ErrInvalidTransientHops,
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			expectedErr: ErrUnknownLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validTestConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

// TestValidateConfig_DerivedFields tests that validation populates the parsed fields.
func TestValidateConfig_DerivedFields(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 400*time.Millisecond, cfg.ParsedPollInterval)
	assert.Equal(t, 60*time.Second, cfg.ParsedRefreshInterval)
	assert.Equal(t, 5*time.Minute, cfg.ParsedRefreshMargin)
	assert.Equal(t, 30*time.Second, cfg.ParsedRefreshTimeout)
	assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
}

// TestValidateConfig_TrimsHosts tests that host values are trimmed before use.
func TestValidateConfig_TrimsHosts(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.PrimaryHost = "  app.meridian.io  "
	cfg.SecondaryHost = " reports.meridian.io "

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "app.meridian.io", cfg.PrimaryHost)
	assert.Equal(t, "reports.meridian.io", cfg.SecondaryHost)
}

// TestConstants tests the constants.
func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1024*1024, DefaultMaxLogLength)
	assert.Equal(t, ".meridian-desk.yaml", DefaultConfigFilename)
}
