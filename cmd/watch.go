package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meridianlabs/meridian-desk/internal/app"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep stored tokens fresh until interrupted",
	Long: `Runs the background refresh loop in the foreground.

Every refresh interval the stored tokens are inspected and the ones
nearing expiry are renewed with their refresh tokens. Stop with Ctrl+C.`,
	Run: func(cmd *cobra.Command, _ []string) {
		application, err := app.New(appConfig)
		if err != nil {
			logger.Fatalf(cmd.Context(), "Failed to initialize: %v", err)
		}

		if err = application.Watch(cmd.Context()); err != nil {
			logger.Fatalf(cmd.Context(), "Watch failed: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(watchCmd)
}
