package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meridianlabs/meridian-desk/internal/app"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign on to both Meridian hosts through the browser",
	Long: `Opens a browser window and drives the sign-on flow.

The login process:
1. The browser opens the primary host's landing page
2. Stored credentials are typed in automatically when available,
   otherwise finish the form yourself
3. After landing, the session cascades to the reports host
4. The extracted tokens are stored for background refresh

Tokens that are still valid are kept as-is; use --force to sign on again
regardless.`,
	Run: func(cmd *cobra.Command, _ []string) {
		force, _ := cmd.Flags().GetBool("force")

		application, err := app.New(appConfig)
		if err != nil {
			logger.Fatalf(cmd.Context(), "Failed to initialize: %v", err)
		}

		if err = application.Login(cmd.Context(), force); err != nil {
			logger.Fatalf(cmd.Context(), "Login failed: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	loginCmd.Flags().BoolP("force", "f", false, "sign on even when valid tokens are stored.")

	rootCmd.AddCommand(loginCmd)
}
