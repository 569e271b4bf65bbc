package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
)

// Exporter renders one session to a writer
type Exporter interface {
	Export(session *internal.ChatSession, w io.Writer) error
	Extension() string
}

var exporters = map[string]func() Exporter{
	"jsonl":    func() Exporter { return &JSONLExporter{} },
	"md":       func() Exporter { return &MarkdownExporter{} },
	"markdown": func() Exporter { return &MarkdownExporter{} },
	"yaml":     func() Exporter { return &YAMLExporter{} },
	"yml":      func() Exporter { return &YAMLExporter{} },
	"json":     func() Exporter { return &JSONExporter{} },
}

// NewExporter looks up an exporter by format name, ignoring case
func NewExporter(format string) (Exporter, error) {
	newExporter, ok := exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
	return newExporter(), nil
}
