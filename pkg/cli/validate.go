package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtmock/virtmock/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <mocks-dir>",
	Short: "Validate mock fixture files without starting the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixtures, err := config.LoadFixturesDir(args[0])
		if err != nil {
			return err
		}

		operations, responses := 0, 0
		for _, fixture := range fixtures {
			operations += len(fixture.Service.Operations)
			responses += len(fixture.Responses)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d service(s), %d operation(s), %d response(s)\n",
			len(fixtures), operations, responses)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
