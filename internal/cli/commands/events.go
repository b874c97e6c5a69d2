package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"aivaidya-be/internal/cli/ui"
	"aivaidya-be/pkg/events"
	pktNats "aivaidya-be/pkg/nats"

	"github.com/spf13/cobra"
)

var natsFlag string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "follow triage events published to NATS",
	Long: `Print TRIAGE_COMPLETED and TRIAGE_FAILED events as the server forwards them.
Only new events are shown. Requires the server to run with NATS_URL set.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.SilenceUsage = true
	eventsCmd.Flags().StringVar(&natsFlag, "nats", envOr("NATS_URL", "nats://localhost:4222"), "NATS server URL")
}

func runEvents(cmd *cobra.Command, args []string) error {
	sub, err := pktNats.NewSubscriber(natsFlag)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, pktNats.SubjectAll, "", func(ctx context.Context, event events.Event) error {
		printEvent(event)
		return nil
	})
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	ui.PrintInfo("listening on %s (Ctrl-C to stop)", natsFlag)
	<-ctx.Done()
	return nil
}

func printEvent(event events.Event) {
	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprint(payload[k]))
	}

	line := event.Timestamp().Format("15:04:05") + " " + event.EventType() + sb.String()
	if event.EventType() == events.TypeTriageFailed {
		ui.PrintWarning("%s", line)
		return
	}
	ui.PrintInfo("%s", line)
}
