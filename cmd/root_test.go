package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/constants"
)

const testBaseConfigContent = `
primary_host: "app.meridian.io"
secondary_host: "reports.meridian.io"
primary_landing_path: "/dashboard"
secondary_protected_path: "/api/reports"
login_mode: "password"
vault_preference: "auto"
poll_interval: "400ms"
refresh_interval: "60s"
refresh_margin: "5m"
refresh_timeout: "30s"
cascade_max_transient_hops: 3
log_level: "info"
`

// TestFlagOverrides verifies that command-line flags override configuration file values.
//
//nolint:tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]string
		expectedConfig func(*testing.T, *config.Config)
		expectError    bool
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]string{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.LoginModePassword, cfg.LoginMode)
				assert.Equal(t, config.VaultPreferenceAuto, cfg.VaultPreference)
				assert.Equal(t, "info", cfg.LogLevel)
			},
		},
		{
			name: "login mode override",
			flags: map[string]string{
				"login-mode": config.LoginModeSSO,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.LoginModeSSO, cfg.LoginMode)
			},
		},
		{
			name: "vault preference override",
			flags: map[string]string{
				"vault": config.VaultPreferenceEncryptedFile,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.VaultPreferenceEncryptedFile, cfg.VaultPreference)
			},
		},
		{
			name: "log level override",
			flags: map[string]string{
				"log-level": "debug",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "invalid login mode is rejected",
			flags: map[string]string{
				"login-mode": "magic-link",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
			require.NoError(t, os.WriteFile(configPath,
				[]byte(testBaseConfigContent), constants.DefaultFilePermissions))

			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			command := &cobra.Command{}
			flags := command.Flags()
			flags.String("login-mode", "", "")
			flags.String("vault", "", "")
			flags.String("log-level", "", "")

			for name, value := range tt.flags {
				require.NoError(t, flags.Set(name, value))
			}

			err = bindFlagsToConfig(flags, cfg)
			if tt.expectError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			tt.expectedConfig(t, cfg)
		})
	}
}

// TestCommandRegistration verifies every subcommand is attached to the root.
func TestCommandRegistration(t *testing.T) {
	t.Parallel()

	expected := []string{"login", "logout", "status", "watch", "vault"}

	registered := make(map[string]*cobra.Command, len(rootCmd.Commands()))
	for _, command := range rootCmd.Commands() {
		registered[command.Name()] = command
	}

	for _, name := range expected {
		assert.Contains(t, registered, name)
	}

	vaultSubcommands := make([]string, 0, 2)
	for _, command := range registered["vault"].Commands() {
		vaultSubcommands = append(vaultSubcommands, command.Name())
	}

	assert.Contains(t, vaultSubcommands, "set")
	assert.Contains(t, vaultSubcommands, "dismiss-warning")
}
