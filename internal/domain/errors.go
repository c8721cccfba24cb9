// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common failure cases.
var (
	// ErrEmptyContent indicates the submitted text is empty or whitespace only.
	ErrEmptyContent = errors.New("email content is empty")

	// ErrContentTooLong indicates the text exceeds the maximum length.
	ErrContentTooLong = errors.New("email content exceeds maximum length")

	// ErrEmptyFile indicates an uploaded file has no bytes.
	ErrEmptyFile = errors.New("file is empty")

	// ErrFileTooLarge indicates an uploaded file exceeds the maximum size.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrUnsupportedFileType indicates a file that is neither plain text nor PDF.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidEncoding indicates a text file that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")

	// ErrNoFileSelected indicates a file submission without a selected file.
	ErrNoFileSelected = errors.New("no file selected")

	// ErrSubmissionInProgress indicates a submission is already in flight.
	ErrSubmissionInProgress = errors.New("a submission is already in progress")

	// ErrServiceUnavailable indicates the classification service is not reachable.
	ErrServiceUnavailable = errors.New("classification service unavailable")

	// ErrServiceTimeout indicates the classification service did not respond in time.
	ErrServiceTimeout = errors.New("classification service timeout")

	// ErrInvalidResponse indicates the service response could not be parsed.
	ErrInvalidResponse = errors.New("invalid classification response")

	// ErrControllerClosed indicates the controller was torn down.
	ErrControllerClosed = errors.New("controller closed")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports content or file input that failed validation.
// It is always produced before any network call.
type ValidationError struct {
	// Field names the rejected input ("text", "file").
	Field string

	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// ErrorKind classifies a submission failure.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindService    ErrorKind = "service"
	KindParse      ErrorKind = "parse"
)

// ClassificationError wraps a submission failure with the context needed
// to present it to a user.
type ClassificationError struct {
	// Kind is the failure category.
	Kind ErrorKind

	// Op is the operation that failed.
	Op string

	// StatusCode is the HTTP status returned by the service, if any.
	StatusCode int

	// Message is the human-readable message, if the service supplied one.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	msg := e.UserMessage()
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message shown to the user. It is never empty.
func (e *ClassificationError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		if text := http.StatusText(e.StatusCode); text != "" {
			return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, text)
		}
		return fmt.Sprintf("HTTP error %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind) + " error"
}

// WrapError creates a new ClassificationError with context.
func WrapError(op string, kind ErrorKind, err error) *ClassificationError {
	return &ClassificationError{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// ServiceError creates a ClassificationError for a non-2xx response.
func ServiceError(op string, status int, message string) *ClassificationError {
	return &ClassificationError{
		Kind:       KindService,
		Op:         op,
		StatusCode: status,
		Message:    message,
		Err:        ErrServiceUnavailable,
	}
}

// KindOf reports the failure kind of err. Bare validation errors map to
// KindValidation; unknown errors map to KindNetwork.
func KindOf(err error) ErrorKind {
	var ce *ClassificationError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindNetwork
}

// UserMessage extracts a human-readable message from any error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ClassificationError
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}
	return err.Error()
}
