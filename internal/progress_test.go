package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Testing",
			fn:      func() error { return nil },
		},
		{
			name:    "function with error",
			message: "Testing error",
			fn:      func() error { return errors.New("test error") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
			err = ShowThinking(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowThinking() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpin(t *testing.T) {
	var buf bytes.Buffer
	err := spin(context.Background(), &buf, "Thinking...", func() error {
		time.Sleep(250 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("spin() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Thinking...") {
		t.Errorf("spin() output = %q, want spinner frames", buf.String())
	}
}

func TestSpin_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	err := spin(ctx, &bytes.Buffer{}, "Testing", func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("spin() error = %v, want deadline exceeded", err)
	}
}

func TestPrintStatus(t *testing.T) {
	tests := []struct {
		name  string
		print func(w *bytes.Buffer)
		want  string
	}{
		{
			name:  "success",
			print: func(w *bytes.Buffer) { PrintSuccess(w, "Exported 2 session(s)") },
			want:  "Exported 2 session(s)\n",
		},
		{
			name:  "warning",
			print: func(w *bytes.Buffer) { PrintWarning(w, "No sessions to export") },
			want:  "WARNING: No sessions to export\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}
