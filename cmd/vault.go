package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianlabs/meridian-desk/internal/app"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	vaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Credential storage management commands",
		Long: `Manage the stored sign-on credential.

Use 'vault set' to store a credential in the resolved backend and
'vault dismiss-warning' to silence the plaintext file warning.`,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	vaultSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Store a sign-on credential",
		Run: func(cmd *cobra.Command, _ []string) {
			username, _ := cmd.Flags().GetString("username")

			application, err := app.New(appConfig)
			if err != nil {
				logger.Fatalf(cmd.Context(), "Failed to initialize: %v", err)
			}

			if err = application.SaveCredential(cmd.Context(), username, os.Stdin); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to store the credential: %v", err)
			}
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	vaultDismissWarningCmd = &cobra.Command{
		Use:   "dismiss-warning",
		Short: "Silence the plaintext credential file warning",
		Run: func(cmd *cobra.Command, _ []string) {
			application, err := app.New(appConfig)
			if err != nil {
				logger.Fatalf(cmd.Context(), "Failed to initialize: %v", err)
			}

			if err = application.DismissLegacyWarning(cmd.Context()); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to dismiss the warning: %v", err)
			}
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	vaultSetCmd.Flags().StringP("username", "u", "", "sign-on identifier (e-mail or account name).")
	_ = vaultSetCmd.MarkFlagRequired("username")

	vaultCmd.AddCommand(vaultSetCmd)
	vaultCmd.AddCommand(vaultDismissWarningCmd)
	rootCmd.AddCommand(vaultCmd)
}
