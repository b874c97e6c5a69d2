package commands

import (
	"bytes"
	"encoding/json"
	"fmt"

	"aivaidya-be/internal/cli/ui"

	"github.com/spf13/cobra"
)

var tokenFlag string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show aggregated triage counters (operator token required)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenFlag == "" {
			ui.PrintError("a token is required, pass --token or set VAIDYA_TOKEN")
			return fmt.Errorf("token required")
		}

		client, err := newClient()
		if err != nil {
			ui.PrintError("failed to create client: %v", err)
			return err
		}

		data, err := client.WithToken(tokenFlag).Stats(cmd.Context())
		if err != nil {
			ui.PrintError("failed to fetch stats: %v", err)
			return err
		}

		var out bytes.Buffer
		if err := json.Indent(&out, data, "", "  "); err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, out.String())
		return nil
	},
	SilenceUsage: true,
}

func init() {
	statsCmd.Flags().StringVar(&tokenFlag, "token", envOr("VAIDYA_TOKEN", ""), "operator JWT")
}
