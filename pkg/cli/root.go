// Package cli implements the virtmock command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "virtmock",
	Short: "virtmock serves API mocks for virtualized services",
	Long: `virtmock is a service virtualization server. It loads service
definitions with canned responses and answers live HTTP requests by
dispatching each request to the most appropriate stored response.

Configuration can be provided via flags or a YAML configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
