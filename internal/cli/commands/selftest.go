package commands

import (
	"aivaidya-be/internal/cli/ui"

	"github.com/spf13/cobra"
)

var selfTestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "check that the server can reach the model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			ui.PrintError("failed to create client: %v", err)
			return err
		}

		echo, err := client.SelfTest(cmd.Context())
		if err != nil {
			ui.PrintError("self-test failed: %v", err)
			return err
		}
		ui.PrintSuccess("model replied: %s", echo)
		return nil
	},
	SilenceUsage: true,
}
