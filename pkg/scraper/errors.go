package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorType categorizes different types of backend errors
type ErrorType string

const (
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeServiceUnavailable ErrorType = "service_unavailable"
	ErrorTypeTimeout            ErrorType = "timeout"
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeServer             ErrorType = "server"
	ErrorTypeBadRequest         ErrorType = "bad_request"
	ErrorTypeInvalidResponse    ErrorType = "invalid_response"
	ErrorTypeCancelled          ErrorType = "cancelled"
)

// APIError represents a structured error from the scrape backend
type APIError struct {
	Type       ErrorType
	StatusCode int // 0 when the request never got a response
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	prefix := string(e.Type)
	if e.StatusCode > 0 {
		prefix = fmt.Sprintf("%s (%d)", e.Type, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error is likely to succeed on retry
func (e *APIError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeServiceUnavailable, ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeServer:
		return true
	default:
		return false
	}
}

// UserMessage returns a user-friendly error message
func (e *APIError) UserMessage() string {
	switch e.Type {
	case ErrorTypeNotFound:
		return fmt.Sprintf("Not found: %s", e.Message)
	case ErrorTypeServiceUnavailable:
		return "Scrape backend unavailable. Please check if the server is running."
	case ErrorTypeTimeout:
		return "Request to the scrape backend timed out."
	case ErrorTypeNetwork:
		return "Network error while talking to the scrape backend. Please check your connection."
	case ErrorTypeServer:
		return fmt.Sprintf("Backend error: %s", e.Message)
	case ErrorTypeBadRequest:
		return fmt.Sprintf("Request rejected: %s", e.Message)
	case ErrorTypeInvalidResponse:
		return "Received invalid response from the scrape backend."
	case ErrorTypeCancelled:
		return "Request was cancelled."
	default:
		return e.Message
	}
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeNotFound
}

// UserMessage returns the friendly message for structured errors and err.Error() otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}

// newStatusError maps a non-2xx response onto the taxonomy.
func newStatusError(status int, message string) *APIError {
	errType := ErrorTypeServer
	switch {
	case status == http.StatusNotFound:
		errType = ErrorTypeNotFound
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway:
		errType = ErrorTypeServiceUnavailable
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		errType = ErrorTypeTimeout
	case status >= 400 && status < 500:
		errType = ErrorTypeBadRequest
	}
	return &APIError{
		Type:       errType,
		StatusCode: status,
		Message:    message,
	}
}

// newTransportError classifies a failure that happened before a response arrived.
func newTransportError(err error) *APIError {
	switch {
	case errors.Is(err, context.Canceled):
		return &APIError{Type: ErrorTypeCancelled, Message: "Operation cancelled", Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Type: ErrorTypeTimeout, Message: "Request timed out", Cause: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &APIError{Type: ErrorTypeTimeout, Message: "Request timed out", Cause: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &APIError{Type: ErrorTypeServiceUnavailable, Message: "Service not available", Cause: err}
	}

	return &APIError{Type: ErrorTypeNetwork, Message: "Network error", Cause: err}
}

func newInvalidResponseError(message string, cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidResponse,
		Message: message,
		Cause:   cause,
	}
}
