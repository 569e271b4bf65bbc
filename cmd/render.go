package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/gujjar-gpt/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2)
)

// messageRenderer prints chat turns. Replies are rendered as Markdown on a terminal
// and printed verbatim otherwise.
type messageRenderer struct {
	w        io.Writer
	markdown *glamour.TermRenderer
}

func newMessageRenderer(w io.Writer) *messageRenderer {
	r := &messageRenderer{w: w}
	if internal.IsTerminal(w) {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			internal.LogDebug("Markdown rendering disabled: %v", err)
		} else {
			r.markdown = md
		}
	}
	return r
}

// Message prints one turn with its header, body, image note and sources
func (r *messageRenderer) Message(sessionID string, msg internal.ChatMessage) {
	label, style := "👤 You", userMessageStyle
	switch {
	case msg.IsError():
		label, style = "⚠️  GujjarGPT", errorMessageStyle
	case msg.Role == internal.RoleModel:
		label, style = "🤖 GujjarGPT", assistantMessageStyle
	}

	header := style.Render(label)
	if ts := formatClock(msg.Timestamp); ts != "" {
		header += " " + idStyle.Render(ts)
	}
	_, _ = fmt.Fprintln(r.w, header)

	if text := strings.TrimSpace(msg.Text); text != "" {
		_, _ = fmt.Fprintln(r.w, r.body(msg.Role, text))
	}
	if n := len(msg.Attachments); n > 0 {
		_, _ = fmt.Fprintln(r.w, messageContentStyle.Render(sourceStyle.Render(fmt.Sprintf("📎 %d image attachment(s)", n))))
	}
	if msg.ImageURL != "" {
		_, _ = fmt.Fprintln(r.w, messageContentStyle.Render(sourceStyle.Render(
			fmt.Sprintf("🖼️  image ready: gujjar-gpt save-image %s %s", sessionID, msg.ID))))
	}
	if len(msg.Sources) > 0 {
		_, _ = fmt.Fprintln(r.w, messageContentStyle.Render(sourceStyle.Render("Sources:")))
		for i, src := range msg.Sources {
			title := src.Web.Title
			if title == "" {
				title = src.Web.URI
			}
			_, _ = fmt.Fprintln(r.w, messageContentStyle.Render(sourceStyle.Render(fmt.Sprintf("[%d] %s  %s", i+1, title, src.Web.URI))))
		}
	}
	_, _ = fmt.Fprintln(r.w)
}

func (r *messageRenderer) body(role internal.Role, text string) string {
	if role == internal.RoleModel && r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return messageContentStyle.Render(text)
}

// formatClock shortens a stored timestamp for display
func formatClock(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(internal.TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("Jan 02 15:04:05")
}

// formatSessionDate turns a millisecond session id into a relative date label
func formatSessionDate(id string, now time.Time) string {
	var ms int64
	if _, err := fmt.Sscanf(id, "%d", &ms); err != nil || ms <= 0 {
		return "-"
	}
	t := time.UnixMilli(ms).Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
