package errors

import "fmt"

// ErrorCode represents a Sift error code.
type ErrorCode string

const (
	ErrInvalidRequest            ErrorCode = "INVALID_REQUEST"            // 400
	ErrNotFound                  ErrorCode = "NOT_FOUND"                  // 404
	ErrAlreadyResolved           ErrorCode = "ALREADY_RESOLVED"           // 409
	ErrMaterializationFailed     ErrorCode = "MATERIALIZATION_FAILED"     // 502
	ErrClassificationUnavailable ErrorCode = "CLASSIFICATION_UNAVAILABLE" // 503
	ErrCancelled                 ErrorCode = "CANCELLED"                  // 499
	ErrInternal                  ErrorCode = "INTERNAL"                   // 500
)

// SiftError represents a structured error with code, status, and details.
type SiftError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SiftError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
// Covers validation failures before any store write (empty or oversized
// raw text, unknown category, bad addressing).
func NewInvalidRequest(msg string) *SiftError {
	return &SiftError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing capture or record.
func NewNotFound(identifier string) *SiftError {
	return &SiftError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewAlreadyResolved creates a 409 error for a capture that has already
// left the review queue. Resolution is final; callers must refresh state
// before retrying.
func NewAlreadyResolved(id string) *SiftError {
	return &SiftError{
		Code:    ErrAlreadyResolved,
		Status:  409,
		Message: fmt.Sprintf("capture already resolved: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewMaterializationFailed creates a 502 error when a destination record
// could not be created. Category and the submitted fields are preserved in
// Details so the caller can retry through the correction path.
func NewMaterializationFailed(category string, fields map[string]any, cause error) *SiftError {
	msg := fmt.Sprintf("failed to materialize %s record", category)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &SiftError{
		Code:    ErrMaterializationFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"category": category, "fields": fields},
	}
}

// NewClassificationUnavailable creates a 503 error when the classifier
// failed or timed out. The capture is still written; nothing is lost.
func NewClassificationUnavailable(cause error) *SiftError {
	msg := "classification service unavailable"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &SiftError{
		Code:    ErrClassificationUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewCancelled creates a 499 error for a context-cancelled operation.
func NewCancelled(operation string) *SiftError {
	return &SiftError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("operation cancelled: %s", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SiftError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SiftError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a SiftError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*SiftError); ok {
		return sErr.Code == code
	}
	return false
}
