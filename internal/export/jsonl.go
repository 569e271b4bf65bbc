package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/gujjar-gpt/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	Role      internal.Role `json:"role"`
	Text      string        `json:"text"`
	Timestamp string        `json:"timestamp,omitempty"`
	ImageURL  string        `json:"imageUrl,omitempty"`
	Sources   []string      `json:"sources,omitempty"`
	Error     bool          `json:"error,omitempty"`
}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		line := jsonlLine{
			Role:      msg.Role,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
			ImageURL:  msg.ImageURL,
			Error:     msg.IsError(),
		}
		for _, src := range msg.Sources {
			if src.Web != nil {
				line.Sources = append(line.Sources, src.Web.URI)
			}
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
