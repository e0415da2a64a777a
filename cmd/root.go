package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meridianlabs/meridian-desk/internal/config"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "meridian-desk",
		Short: "Manage sign-on sessions and tokens for the Meridian desktop client.",
		Long: `Meridian Desk keeps authenticated sessions alive against both Meridian hosts.

It signs on through a real browser window, extracts the issued tokens,
cascades the session to the reports host, and refreshes tokens in the
background before they expire.`,
		PersistentPreRun: initConfig,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	persistentFlags := rootCmd.PersistentFlags()

	persistentFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	persistentFlags.StringP(
		"login-mode",
		"m",
		"",
		fmt.Sprintf("sign-on flow variant: '%s' or '%s'.",
			config.LoginModeSSO, config.LoginModePassword))

	persistentFlags.StringP(
		"vault",
		"v",
		"",
		"credential storage backend: 'auto', 'platform', 'encrypted_file', 'legacy_file' or 'none'.")

	persistentFlags.StringP(
		"log-level",
		"l",
		"",
		"logging verbosity: 'debug', 'info', 'warn' or 'error'.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("login-mode"); flag != nil && flag.Changed {
		cfg.LoginMode, _ = flags.GetString("login-mode")
	}

	if flag := flags.Lookup("vault"); flag != nil && flag.Changed {
		cfg.VaultPreference, _ = flags.GetString("vault")
	}

	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	return config.ValidateConfig(cfg)
}
