package commands

import (
	"errors"
	"strings"

	"aivaidya-be/internal/cli/ui"
	"aivaidya-be/pkg/chat"

	"github.com/spf13/cobra"
)

var imageFlags []string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [symptoms...]",
	Short: "triage symptoms once and print the verdict",
	Example: `  $ vaidya diagnose "fever and dry cough for 3 days"
  $ vaidya diagnose --image mole.jpg --image mole-closeup.jpg "mole changed colour"`,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.SilenceUsage = true
	diagnoseCmd.Flags().StringSliceVarP(&imageFlags, "image", "i", nil, "photo to attach (repeatable, first 3 are used)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	symptoms := strings.Join(args, " ")

	images, err := loadImages(imageFlags)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	client, err := newClient()
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return err
	}

	session := chat.NewSession(client)
	session.Stage(images...)

	reply, err := session.Send(cmd.Context(), symptoms)
	if errors.Is(err, chat.ErrNothingToSend) {
		ui.PrintError("describe your symptoms or attach a photo")
		return err
	}
	if err != nil {
		return err
	}

	ui.PrintAssistant(reply.Text, reply.Failed)
	if reply.Failed {
		return errors.New(reply.Text)
	}
	return nil
}
