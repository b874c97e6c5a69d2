package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	successColor   = color.New(color.FgGreen, color.Bold)
	errorColor     = color.New(color.FgRed, color.Bold)
	warningColor   = color.New(color.FgYellow, color.Bold)
	infoColor      = color.New(color.FgCyan)
	boldColor      = color.New(color.Bold)
	assistantColor = color.New(color.FgHiBlue)
	dimColor       = color.New(color.Faint)
)

// Out is where everything is printed. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

func PrintSuccess(format string, args ...interface{}) {
	successColor.Fprintf(Out, "✓ %s\n", fmt.Sprintf(format, args...))
}

func PrintError(format string, args ...interface{}) {
	errorColor.Fprintf(Out, "✗ %s\n", fmt.Sprintf(format, args...))
}

func PrintWarning(format string, args ...interface{}) {
	warningColor.Fprintf(Out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func PrintInfo(format string, args ...interface{}) {
	infoColor.Fprintf(Out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

func PrintBold(format string, args ...interface{}) {
	boldColor.Fprintln(Out, fmt.Sprintf(format, args...))
}

func PrintDim(format string, args ...interface{}) {
	dimColor.Fprintln(Out, fmt.Sprintf(format, args...))
}

// PrintAssistant prints a reply from the assistant. Failed replies are shown as errors.
func PrintAssistant(text string, failed bool) {
	if failed {
		PrintError("%s", text)
		return
	}
	assistantColor.Fprintf(Out, "AIVaidya › ")
	fmt.Fprintln(Out, text)
}

func PrintPrompt() {
	boldColor.Fprint(Out, "you › ")
}

func PrintChatWelcomeBanner(server string) {
	PrintBold("AIVaidya symptom triage (%s)", server)
	PrintDim("Commands: /image <path>... to attach up to 3 photos, /clear to drop them, /quit to leave.")
	fmt.Fprintln(Out)
}
