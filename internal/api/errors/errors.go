package errors

import (
	"fmt"
	"net/http"

	"adaptive-voice/internal/app/apperrors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// FromDomain maps a recognition-layer error to its API representation. The
// domain error code travels in the Code field so clients can branch on it
// without parsing messages.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	code := apperrors.CodeOf(err)
	apiErr := &APIError{
		Message: err.Error(),
		Code:    string(code),
	}

	switch code {
	case apperrors.CodeNoSpeech:
		apiErr.Kind = KindValidation
	case apperrors.CodeUnknownEngine:
		apiErr.Kind = KindBadRequest
	case apperrors.CodeNotAllowed:
		apiErr.Kind = KindForbidden
	case apperrors.CodeUnsupportedCapability, apperrors.CodeEngineInit,
		apperrors.CodeNetwork, apperrors.CodeTimeout:
		apiErr.Kind = KindServiceUnavailable
	default:
		apiErr.Kind = KindInternal
		apiErr.Message = "Internal server error"
	}

	return apiErr
}
