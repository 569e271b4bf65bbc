package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("disk full")
	err := &StorageError{
		Key: "gujjar-gpt-chats-Asha",
		Op:  "set",
		Err: originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "gujjar-gpt-chats-Asha") {
		t.Errorf("StorageError.Error() should contain key, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "prompt", Reason: "prompt required"}
	if got := err.Error(); got != "invalid prompt: prompt required" {
		t.Errorf("ValidationError.Error() = %q", got)
	}
}

func TestServiceError(t *testing.T) {
	cause := errors.New("rpc error: API key not valid")
	err := NewServiceError(KindCredentialInvalid, ModeChat, cause)

	if err.Error() != "API key is invalid. Please ensure it is configured correctly." {
		t.Errorf("ServiceError.Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("ServiceError.Unwrap() should return original error")
	}

	wrapped := fmt.Errorf("send: %w", err)
	var svcErr *ServiceError
	if !errors.As(wrapped, &svcErr) || svcErr.Kind != KindCredentialInvalid {
		t.Errorf("errors.As() did not find ServiceError in %v", wrapped)
	}
}

func TestServiceMessage(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		mode Mode
		want string
	}{
		{KindNetworkUnreachable, ModeChat, "Network error. Please check your internet connection."},
		{KindMalformedRequest, ModeChat, "The request was malformed. This can happen with unsupported image types."},
		{KindContentBlocked, ModeImage, "Your prompt was blocked for safety reasons. Please try a different prompt."},
		{KindSessionInit, ModeChat, "Chat is not initialized."},
		{KindUnknown, ModeChat, "Failed to get a response from the AI. The service may be temporarily down."},
		{KindUnknown, ModeImage, "Failed to generate an image. The service may be temporarily down or the prompt may be unsupported."},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.mode), func(t *testing.T) {
			if got := ServiceMessage(tt.kind, tt.mode); got != tt.want {
				t.Errorf("ServiceMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/tmp/out.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") || !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() = %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
