package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/gujjar-gpt/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		session   *internal.ChatSession
		wantLines int
		want      []string
	}{
		{
			name:      "empty session",
			session:   internal.CreateTestSessionWithMessages("1", []internal.ChatMessage{}),
			wantLines: 0,
		},
		{
			name:      "session with sources",
			session:   internal.CreateTestSession("2"),
			wantLines: 2,
			want: []string{
				`"role":"user"`,
				`"role":"model"`,
				`"sources":["https://example.com/wellbeing"]`,
			},
		},
		{
			name: "error turn",
			session: internal.CreateTestSessionWithMessages("3", []internal.ChatMessage{
				internal.NewUserMessage("hi", nil, now),
				internal.NewErrorMessage("Network error. Please check your internet connection.", now),
			}),
			wantLines: 2,
			want: []string{
				`"timestamp":"2024-01-01T00:00:00.000Z"`,
				`"error":true`,
			},
		},
		{
			name:      "image reply",
			session:   internal.CreateTestSessionWithMessages("4", []internal.ChatMessage{internal.CreateTestImageMessage()}),
			wantLines: 1,
			want:      []string{`"imageUrl":"data:image/png;base64,`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONLExporter{}).Export(tt.session, &buf); err != nil {
				t.Fatalf("JSONLExporter.Export() error = %v", err)
			}

			output := strings.TrimSpace(buf.String())
			if tt.wantLines == 0 {
				if output != "" {
					t.Errorf("Empty session should produce empty output, got: %q", output)
				}
				return
			}

			lines := strings.Split(output, "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d", len(lines), tt.wantLines)
			}
			for i, line := range lines {
				var msg map[string]interface{}
				if err := json.Unmarshal([]byte(line), &msg); err != nil {
					t.Errorf("Line %d is not valid JSON: %v", i, err)
				}
				if _, ok := msg["role"]; !ok {
					t.Errorf("Line %d missing 'role' field", i)
				}
			}
			for _, wantStr := range tt.want {
				if !strings.Contains(output, wantStr) {
					t.Errorf("Output should contain %q, got:\n%s", wantStr, output)
				}
			}
		})
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	if got := (&JSONLExporter{}).Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}
