package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrSendInProgress is returned when a send is attempted while another is outstanding
	ErrSendInProgress = errors.New("a reply is already in progress")
	// ErrEmptyInput is returned for blank input with no attachments
	ErrEmptyInput = errors.New("nothing to send")
	// ErrNotLoggedIn is returned when a command needs a profile and none is stored
	ErrNotLoggedIn = errors.New("not logged in (run `gujjar-gpt login` first)")
)

// StorageError represents errors accessing the key/value store
type StorageError struct {
	Key string
	Op  string // "get", "set", "remove", "open"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError is raised before any network call and never mutates history
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthError carries the message shown on the login screen
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// ErrorKind classifies a failed call to the AI service
type ErrorKind string

const (
	KindCredentialInvalid  ErrorKind = "credential-invalid"
	KindNetworkUnreachable ErrorKind = "network-unreachable"
	KindMalformedRequest   ErrorKind = "malformed-request"
	KindContentBlocked     ErrorKind = "content-blocked"
	KindUnknown            ErrorKind = "unknown"
	KindSessionInit        ErrorKind = "session-init"
)

// ServiceError is a classified AI service failure. Message is safe to show to the user.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError builds a ServiceError with the user-facing message for kind and mode
func NewServiceError(kind ErrorKind, mode Mode, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: ServiceMessage(kind, mode), Err: err}
}

// ServiceMessage returns the user-facing text for a failure kind
func ServiceMessage(kind ErrorKind, mode Mode) string {
	switch kind {
	case KindCredentialInvalid:
		return "API key is invalid. Please ensure it is configured correctly."
	case KindNetworkUnreachable:
		return "Network error. Please check your internet connection."
	case KindMalformedRequest:
		return "The request was malformed. This can happen with unsupported image types."
	case KindContentBlocked:
		return "Your prompt was blocked for safety reasons. Please try a different prompt."
	case KindSessionInit:
		return "Chat is not initialized."
	}
	if mode == ModeImage {
		return "Failed to generate an image. The service may be temporarily down or the prompt may be unsupported."
	}
	return "Failed to get a response from the AI. The service may be temporarily down."
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
