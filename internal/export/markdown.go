package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format.
// Model replies are already Markdown and are written as-is; user turns are escaped.
func (e *MarkdownExporter) Export(session *internal.ChatSession, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n", speaker(msg), timestamp)

		text := msg.Text
		if msg.Role == internal.RoleUser {
			text = escapeMarkdown(text)
		}
		if text != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", text)
		}
		if n := len(msg.Attachments); n > 0 {
			_, _ = fmt.Fprintf(w, "_%d image attachment(s)_\n\n", n)
		}
		if msg.ImageURL != "" {
			_, _ = fmt.Fprintf(w, "_Generated image (%s) omitted. Use `gujjar-gpt save-image %s %s` to save it._\n\n",
				imageMime(msg.ImageURL), session.ID, msg.ID)
		}
		if len(msg.Sources) > 0 {
			_, _ = fmt.Fprintf(w, "Sources:\n\n")
			for _, src := range msg.Sources {
				if src.Web == nil {
					continue
				}
				title := src.Web.Title
				if title == "" {
					title = src.Web.URI
				}
				_, _ = fmt.Fprintf(w, "- [%s](%s)\n", title, src.Web.URI)
			}
			_, _ = fmt.Fprintf(w, "\n")
		}

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func speaker(msg internal.ChatMessage) string {
	switch {
	case msg.IsError():
		return "Error"
	case msg.Role == internal.RoleUser:
		return "You"
	default:
		return "GujjarGPT"
	}
}

func imageMime(dataURL string) string {
	header, _, _ := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ";")
	return header
}

// escapeMarkdown escapes emphasis markers outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
