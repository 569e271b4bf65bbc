package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var showLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Long:  `List the saved chat sessions of the logged-in profile, most recent first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.requireLogin()
		if err != nil {
			return err
		}
		if profile.IsGuest() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), idStyle.Render("Guest chats are not saved."))
			return nil
		}
		printSessionTable(cmd.OutOrStdout(), a.sessions.List(), "")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show messages for a specific session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.findSession(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, headerStyle.Render("💬 "+session.Title))
		_, _ = fmt.Fprintln(out, dateStyle.Render(fmt.Sprintf("Created: %s • Messages: %d",
			formatSessionDate(session.ID, time.Now()), len(session.Messages))))
		_, _ = fmt.Fprintln(out)

		messages := session.Messages
		if showLimit > 0 && showLimit < len(messages) {
			messages = messages[:showLimit]
		}
		render := newMessageRenderer(out)
		for _, msg := range messages {
			render.Message(session.ID, msg)
		}
		if remaining := len(session.Messages) - len(messages); remaining > 0 {
			_, _ = fmt.Fprintln(out, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", remaining)))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.findSession(args[0]); err != nil {
			return err
		}
		wasActive, err := a.sessions.Delete(args[0])
		if err != nil {
			return err
		}
		internal.LogDebug("Deleted session %s (active: %v)", args[0], wasActive)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
		return nil
	},
}

// printSessionTable lists sessions with title, message count and date. activeID is marked.
func printSessionTable(out io.Writer, sessions []internal.ChatSession, activeID string) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	_, _ = fmt.Fprintln(out)

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Created")+"\t")
	for _, s := range sessions {
		title := s.Title
		if utf8.RuneCountInString(title) > 50 {
			title = string([]rune(title)[:47]) + "..."
		}
		id := s.ID
		if id == activeID {
			id = "* " + id
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(id),
			title,
			countStyle.Render(strconv.Itoa(len(s.Messages))),
			dateStyle.Render(formatSessionDate(s.ID, now)))
	}
	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: use the ID with `gujjar-gpt show <id>` or `gujjar-gpt chat --session <id>`"))
}

// printSuggestions prints the numbered welcome prompts
func printSuggestions(out io.Writer) {
	_, _ = fmt.Fprintln(out, titleStyle.Render("How can I help you today?"))
	_, _ = fmt.Fprintln(out)
	n := 1
	for _, category := range internal.SuggestedPrompts {
		_, _ = fmt.Fprintln(out, headerStyle.Render(category.Icon+" "+category.Title))
		for _, p := range category.Prompts {
			_, _ = fmt.Fprintf(out, "  %s %s\n", countStyle.Render(fmt.Sprintf("%2d.", n)), p)
			n++
		}
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("Type a number in `gujjar-gpt chat` to use a suggestion, or ask anything."))
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print suggested prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSuggestions(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, deleteCmd, suggestCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Limit number of messages to show")
}
