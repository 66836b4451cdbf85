// Package apperrors provides domain-specific error types for the conman application.
// These error types include contextual information to aid debugging and error reporting.
package apperrors

import (
	"errors"
	"fmt"
)

// Error taxonomy for calls against the workload API. Callers classify failures with errors.Is.
var (
	// ErrNetworkUnavailable means the request could not complete (refused, DNS, timeout).
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrServerRejected means the server answered with a non-2xx status.
	ErrServerRejected = errors.New("server rejected request")
	// ErrActionUnavailable means the workload carries no usable descriptor for the action.
	ErrActionUnavailable = errors.New("action unavailable")
)

// ConfigurationError represents configuration-related errors.
// It includes the configuration file path and specific key that caused the error.
type ConfigurationError struct {
	ConfigPath string // Path to the configuration file
	Key        string // Configuration key that caused the error
	Err        error  // Underlying error
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error in %s (key: %s): %v", e.ConfigPath, e.Key, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.ConfigPath, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DockerConnectionError represents Docker connection and operation errors.
// It includes the socket path and the operation that failed.
type DockerConnectionError struct {
	SocketPath string // Docker socket path (e.g., unix:///var/run/docker.sock)
	Operation  string // Operation that failed (e.g., "ContainerList", "ServiceRemove")
	Err        error  // Underlying error
}

// Error implements the error interface for DockerConnectionError.
func (e *DockerConnectionError) Error() string {
	if e.SocketPath != "" {
		return fmt.Sprintf("docker %s failed (socket: %s): %v", e.Operation, e.SocketPath, e.Err)
	}
	return fmt.Sprintf("docker %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *DockerConnectionError) Unwrap() error {
	return e.Err
}

// RequestError describes a failed call against the workload API.
// Err is one of ErrNetworkUnavailable or ErrServerRejected, optionally wrapping the transport error.
type RequestError struct {
	Method     string // HTTP method
	URL        string // Request URL
	StatusCode int    // HTTP status code (0 if no response was received)
	Body       string // Response body, truncated, for debugging
	Err        error  // Classified cause
}

// Error implements the error interface for RequestError.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (status: %d): %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewNetworkError classifies a transport failure as ErrNetworkUnavailable.
func NewNetworkError(method, url string, cause error) *RequestError {
	return &RequestError{
		Method: method,
		URL:    url,
		Err:    fmt.Errorf("%w: %w", ErrNetworkUnavailable, cause),
	}
}

// NewRejectedError classifies a non-2xx response as ErrServerRejected.
func NewRejectedError(method, url string, statusCode int, body string) *RequestError {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &RequestError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Body:       body,
		Err:        ErrServerRejected,
	}
}
