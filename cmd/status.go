package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meridianlabs/meridian-desk/internal/app"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored tokens and credential storage health",
	Run: func(cmd *cobra.Command, _ []string) {
		application, err := app.New(appConfig)
		if err != nil {
			logger.Fatalf(cmd.Context(), "Failed to initialize: %v", err)
		}

		if err = application.Status(cmd.Context()); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to show status: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(statusCmd)
}
