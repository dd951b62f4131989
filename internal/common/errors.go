package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure kinds of one extraction invocation. Each aborts the current
// invocation only; the process stays ready for the next submission.
var (
	// ErrDocumentOpen marks an unreadable or corrupt PDF. Not retryable.
	ErrDocumentOpen = errors.New("document open error")
	// ErrRemoteService marks a transport, auth, or timeout failure against
	// the extraction model. The caller may resubmit; we never retry here
	// since automatic retry risks duplicate billed calls.
	ErrRemoteService = errors.New("remote service error")
	// ErrMalformedExtraction marks a model response that did not contain
	// recoverable JSON or was missing required fields.
	ErrMalformedExtraction = errors.New("malformed extraction")
	// ErrInvalidInput marks a bad request from the caller.
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors. Each wraps its sentinel so errors.Is works on the result.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func DocumentOpenError(message string, cause error) error {
	return &AppError{Code: "DOCUMENT_OPEN", Message: message, Cause: join(ErrDocumentOpen, cause)}
}

func RemoteServiceError(message string, cause error) error {
	return &AppError{Code: "REMOTE_SERVICE", Message: message, Cause: join(ErrRemoteService, cause)}
}

func MalformedExtractionError(message string, cause error) error {
	return &AppError{Code: "MALFORMED_EXTRACTION", Message: message, Cause: join(ErrMalformedExtraction, cause)}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return errors.Join(kind, cause)
}
