package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn behind a spinner and leaves a ✓ or ✗ line when it returns
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !IsTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	err := spin(ctx, os.Stderr, message, fn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\r%s %s\n", errorStyle.Render("✗"), message)
		return err
	}
	fmt.Fprintf(os.Stderr, "\r%s %s\n", successStyle.Render("✓"), message)
	return nil
}

// ShowThinking runs fn behind a spinner that is erased when fn returns.
// Used while waiting on a reply so the reply prints on a clean line.
func ShowThinking(ctx context.Context, message string, fn func() error) error {
	if !IsTerminal(os.Stderr) {
		return fn()
	}
	err := spin(ctx, os.Stderr, message, fn)
	fmt.Fprintf(os.Stderr, "\r\033[K")
	return err
}

// spin animates until fn returns or ctx is done. fn keeps running after ctx is done.
func spin(ctx context.Context, w io.Writer, message string, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprintf(w, "\r%s %s", progressStyle.Render(spinnerFrames[i%len(spinnerFrames)]), message)
		}
	}
}

// IsTerminal reports whether w is a character device
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess writes a ✓ line to w, or the bare message when w is not a terminal
func PrintSuccess(w io.Writer, message string) {
	printStatus(w, successStyle, "✓", "", message)
}

// PrintWarning writes a ⚠ line to w
func PrintWarning(w io.Writer, message string) {
	printStatus(w, warningStyle, "⚠", "WARNING: ", message)
}

func printStatus(w io.Writer, style lipgloss.Style, symbol, plainPrefix, message string) {
	if IsTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", style.Render(symbol), message)
		return
	}
	fmt.Fprintf(w, "%s%s\n", plainPrefix, message)
}
