package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridianlabs/meridian-desk/internal/version"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	// The version command needs no configuration file.
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.Full())
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(versionCmd)
}
