// Package errors provides standardized error handling for the dashboard services.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Notification configuration codec errors.
const (
	ErrCodeMalformedTemplateKey ErrorCode = "MALFORMED_TEMPLATE_KEY"
	ErrCodeUnknownLanguage      ErrorCode = "UNKNOWN_LANGUAGE"
	ErrCodeMissingConfig        ErrorCode = "MISSING_CONFIG"

	ErrCodeConfigNotFound          ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeStoreReadFailed         ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed        ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeAuditIndexFailed        ErrorCode = "AUDIT_INDEX_FAILED"
	ErrCodePayloadValidationFailed ErrorCode = "PAYLOAD_VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMissingConfigError signals a mandatory top-level object was absent. This
// is the only condition under which a decode escalates to the caller.
func NewMissingConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingConfig,
		Message:   "Mandatory configuration object is absent",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigNotFoundError reports that no persisted configuration exists for
// the requested entity.
func NewConfigNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigNotFound,
		Message:   "No configuration stored for this entity",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreReadError wraps a persistence read failure.
func NewStoreReadError(details string, cause error) *StandardError {
	if cause != nil {
		details = fmt.Sprintf("%s: %v", details, cause)
	}
	return &StandardError{
		Code:      ErrCodeStoreReadFailed,
		Message:   "Failed to read from the configuration store",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteError wraps a persistence write failure.
func NewStoreWriteError(details string, cause error) *StandardError {
	if cause != nil {
		details = fmt.Sprintf("%s: %v", details, cause)
	}
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Failed to write to the configuration store",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadValidationError reports a request body that failed schema validation.
func NewPayloadValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "Request payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := err.(*StandardError)
	return ok && se.Code == code
}
