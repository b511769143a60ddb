package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Request Errors (1xxx)
	ErrCodeInvalidRequest ErrorCode = "AUDIT_1001"
	ErrCodeInvalidFilter  ErrorCode = "AUDIT_1002"
	ErrCodeInvalidRecord  ErrorCode = "AUDIT_1003"

	// Lookup Errors (2xxx)
	ErrCodeAuditEntryNotFound ErrorCode = "AUDIT_2001"

	// Storage Errors (5xxx)
	ErrCodeDatabaseError   ErrorCode = "DB_5001"
	ErrCodeSessionStore    ErrorCode = "DB_5002"
	ErrCodePublisherFailed ErrorCode = "DB_5003"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"
	ErrCodeConfigurationError  ErrorCode = "SERVER_6003"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

func ErrInvalidRequest(details string) *AppError {
	return NewAppError(ErrCodeInvalidRequest, "Invalid request", details, nil)
}

func ErrInvalidFilter(details string) *AppError {
	return NewAppError(ErrCodeInvalidFilter, "Invalid audit filter", details, nil)
}

func ErrInvalidRecord(details string, cause error) *AppError {
	return NewAppError(ErrCodeInvalidRecord, "Invalid record", details, cause)
}

func ErrAuditEntryNotFound(id string) *AppError {
	return NewAppError(ErrCodeAuditEntryNotFound, "Audit entry not found", fmt.Sprintf("ID: %s", id), nil)
}

func ErrDatabaseError(operation string, cause error) *AppError {
	return NewAppError(ErrCodeDatabaseError, "Database operation failed", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrSessionStore(operation string, cause error) *AppError {
	return NewAppError(ErrCodeSessionStore, "Session store operation failed", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrPublisherFailed(subject string, cause error) *AppError {
	return NewAppError(ErrCodePublisherFailed, "Audit publish failed", fmt.Sprintf("Subject: %s", subject), cause)
}

func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, "Internal server error", details, cause)
}

func ErrConfigurationError(config string) *AppError {
	return NewAppError(ErrCodeConfigurationError, "Configuration error", fmt.Sprintf("Config: %s", config), nil)
}

// GetHTTPStatusCode maps an error to an HTTP status code
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrCodeInvalidRequest, ErrCodeInvalidFilter, ErrCodeInvalidRecord:
			return http.StatusBadRequest
		case ErrCodeAuditEntryNotFound:
			return http.StatusNotFound
		case ErrCodeDatabaseError, ErrCodeSessionStore, ErrCodePublisherFailed:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is an audit entry lookup miss
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeAuditEntryNotFound
}
