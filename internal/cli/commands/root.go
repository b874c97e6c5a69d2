package commands

import (
	"fmt"
	"os"
	"time"

	"aivaidya-be/pkg/chat"

	"github.com/spf13/cobra"
)

const (
	version = "0.1.0"

	defaultServer = "http://localhost:4000"
)

var (
	serverFlag  string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:     "vaidya",
	Short:   "AIVaidya triage CLI",
	Version: version,
	Long: `A command-line client for the AIVaidya symptom-triage API. Describe symptoms,
attach up to three photos and get likely conditions, urgency and the specialist
to consult. This is not medical advice.`,
	Example: `  # Interactive session
  $ vaidya chat

  # One-shot triage with a photo
  $ vaidya diagnose "itchy red rash on forearm for 2 days" --image rash.jpg

  # Check that the server can reach the model
  $ vaidya selftest`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(fmt.Sprintf("vaidya version %s\n", version))
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", envOr("VAIDYA_SERVER", defaultServer), "API server address")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 90*time.Second, "request timeout")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(selfTestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(eventsCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() (*chat.APIClient, error) {
	return chat.NewAPIClient(serverFlag, timeoutFlag)
}
