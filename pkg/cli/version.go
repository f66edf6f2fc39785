package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show virtmock version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		version := Version
		commit := Commit
		date := BuildDate

		if info, ok := debug.ReadBuildInfo(); ok {
			if version == "dev" {
				version = info.Main.Version
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					if commit == "none" {
						commit = setting.Value
					}
				case "vcs.time":
					if date == "unknown" {
						date = setting.Value
					}
				case "vcs.modified":
					if setting.Value == "true" {
						commit += "-dirty"
					}
				}
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "virtmock %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
		fmt.Fprintf(out, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
