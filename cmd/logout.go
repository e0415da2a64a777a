package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meridianlabs/meridian-desk/internal/app"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored tokens and end the session",
	Run: func(cmd *cobra.Command, _ []string) {
		deleteCredential, _ := cmd.Flags().GetBool("delete-credential")

		application, err := app.New(appConfig)
		if err != nil {
			logger.Fatalf(cmd.Context(), "Failed to initialize: %v", err)
		}

		if err = application.Logout(cmd.Context(), deleteCredential); err != nil {
			logger.Fatalf(cmd.Context(), "Logout failed: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	logoutCmd.Flags().Bool("delete-credential", false, "also delete the stored sign-on credential.")

	rootCmd.AddCommand(logoutCmd)
}
