package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/gujjar-gpt/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.ChatSession
	}{
		{name: "basic session", session: internal.CreateTestSession("1700000000000")},
		{name: "empty session", session: internal.CreateTestSessionWithMessages("1700000000001", []internal.ChatMessage{})},
		{name: "image session", session: internal.CreateTestSessionWithMessages("1700000000002", []internal.ChatMessage{
			internal.CreateTestImageMessage(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONExporter{}).Export(tt.session, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var decoded internal.ChatSession
			if err := json.Unmarshal([]byte(output), &decoded); err != nil {
				t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, output)
			}
			if decoded.ID != tt.session.ID || len(decoded.Messages) != len(tt.session.Messages) {
				t.Errorf("decoded session = %+v, want id %s with %d messages", decoded, tt.session.ID, len(tt.session.Messages))
			}
			if !strings.Contains(output, "\n  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	if got := (&JSONExporter{}).Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
