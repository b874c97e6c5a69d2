package main

import (
	"fmt"
	"os"
	"strings"

	"aivaidya-be/internal/cli/commands"
	"aivaidya-be/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'vaidya --help' for usage.")
		}
		os.Exit(1)
	}
}
