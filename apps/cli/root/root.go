package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the CCD admin CLI. Subcommands (auth,
// bootstrap, tenant) are attached here.
var rootCmd = &cobra.Command{
	Use:           "ccd",
	Short:         "CCD Suite admin CLI",
	Long:          "Administrative utilities for the CCD Suite API (dev tokens, database bootstrap, tenant provisioning).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
