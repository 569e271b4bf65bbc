package export

import (
	"io"

	"github.com/iksnae/gujjar-gpt/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes a session as YAML. Attachment bytes are left out; only their MIME types remain.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(session *internal.ChatSession, w io.Writer) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() {
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
	}()
	return enc.Encode(session)
}

func (e *YAMLExporter) Extension() string { return "yaml" }
