package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/gujjar-gpt/internal"
)

// JSONExporter writes a session in the same shape it is persisted, indented
type JSONExporter struct{}

func (e *JSONExporter) Export(session *internal.ChatSession, w io.Writer) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func (e *JSONExporter) Extension() string { return "json" }
