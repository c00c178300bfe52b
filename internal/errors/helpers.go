package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewInvalidMessageError creates a rejection error for a malformed raw message
func NewInvalidMessageError(field, message string) *AppError {
	return New(ErrCodeInvalidMessage, message).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("Invalid message: %s", message))
}

// NewValidationError creates a validation error with field context
func NewValidationError(field, value, message string) *AppError {
	return New(ErrCodeInvalidInput, message).
		WithContext("field", field).
		WithContext("value", value).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewStorageError creates a retryable storage error with operation context
func NewStorageError(operation string, err error) *AppError {
	return WrapRetryable(err, ErrCodeStorageFailure, fmt.Sprintf("storage %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Storage operation failed")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}

// NewConflictIgnoredError records an automatic resolution that was dropped
// because a manual assignment already exists. Not a failure; callers log it
// as a no-op outcome.
func NewConflictIgnoredError(externalID string) *AppError {
	return New(ErrCodeConflictIgnored, "automatic resolution ignored, manual assignment present").
		WithContext("external_id", externalID).
		WithUserMessage("Message has a manual assignment")
}

// HTTP helpers

// HTTPStatusCode maps error codes to appropriate HTTP status codes
func HTTPStatusCode(err error) int {
	code := GetCode(err)

	switch code {
	case ErrCodeInvalidMessage, ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return 400 // Bad Request
	case ErrCodeNotFound:
		return 404 // Not Found
	case ErrCodeConflictIgnored:
		return 409 // Conflict
	case ErrCodeTimeout:
		return 408 // Request Timeout
	case ErrCodeStorageFailure, ErrCodeDatabaseMigration:
		return 503 // Service Unavailable
	default:
		return 500 // Internal Server Error
	}
}

// HTTPErrorResponse is a standardized HTTP error payload
type HTTPErrorResponse struct {
	Error struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Context interface{} `json:"context,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an error to a standardized HTTP response
func ToHTTPResponse(err error, requestID string) HTTPErrorResponse {
	response := HTTPErrorResponse{
		RequestID: requestID,
	}

	if appErr, ok := err.(*AppError); ok {
		response.Error.Code = appErr.Code
		response.Error.Message = GetUserMessage(err)
		if len(appErr.Context) > 0 {
			response.Error.Context = appErr.Context
		}
	} else {
		response.Error.Code = ErrCodeInternalError
		response.Error.Message = GetUserMessage(err)
	}

	return response
}
