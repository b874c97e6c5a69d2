package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"aivaidya-be/internal/cli/ui"
	"aivaidya-be/pkg/chat"
	"aivaidya-be/pkg/triage"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start an interactive triage session",
	Long: `Start an interactive session with AIVaidya.

Type your symptoms and press Enter. Attach photos with /image before sending;
they go out with your next message.`,
	Example: `  $ vaidya chat
  you › /image rash.jpg
  you › red itchy rash on my forearm since yesterday`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ui.PrintChatWelcomeBanner(serverFlag)
	return chatLoop(ctx, chat.NewSession(client), os.Stdin)
}

// chatLoop reads one line per turn until /quit, EOF or ctx is done.
func chatLoop(ctx context.Context, session *chat.Session, in io.Reader) error {
	for _, m := range session.Messages() {
		ui.PrintAssistant(m.Text, m.Failed)
	}

	scanner := bufio.NewScanner(in)
	for {
		ui.PrintPrompt()
		if !scanner.Scan() {
			fmt.Fprintln(ui.Out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/clear":
			session.ClearStaged()
			ui.PrintInfo("attachments cleared")
			continue
		case strings.HasPrefix(line, "/image"):
			stageImages(session, strings.Fields(strings.TrimPrefix(line, "/image")))
			continue
		}

		ui.PrintDim("Thinking…")
		reply, err := session.Send(ctx, line)
		if errors.Is(err, chat.ErrNothingToSend) {
			continue
		}
		if err != nil {
			return err
		}
		ui.PrintAssistant(reply.Text, reply.Failed)
	}
}

func stageImages(session *chat.Session, paths []string) {
	if len(paths) == 0 {
		ui.PrintWarning("usage: /image <path>...")
		return
	}
	if len(paths) > triage.MaxImages {
		ui.PrintWarning("only the first %d photos are kept", triage.MaxImages)
		paths = paths[:triage.MaxImages]
	}

	images, err := loadImages(paths)
	if err != nil {
		ui.PrintError("%v", err)
		return
	}
	session.Stage(images...)
	ui.PrintInfo("%d photo(s) attached to your next message", len(images))
}
