package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrServer indicates the backend answered with a non-2xx status.
	ErrServer = errors.New("server responded with an error")

	// ErrNetwork indicates the request was sent but no response arrived,
	// including timeouts.
	ErrNetwork = errors.New("no response from server")

	// ErrRequest indicates the request could not be built or sent.
	ErrRequest = errors.New("request could not be built")
)

// Kind classifies a failed call.
type Kind string

const (
	KindServer  Kind = "server"
	KindNetwork Kind = "network"
	KindRequest Kind = "request"
)

// APIError is the single error type returned by the client for failed calls.
type APIError struct {
	Kind      Kind
	Status    int
	Title     string
	Message   string
	Retryable bool
	Request   RequestDescriptor

	cause error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (%d): %s", e.Request.Method, e.Request.Path, e.Title, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Request.Method, e.Request.Path, e.Title, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func (e *APIError) sentinel() error {
	switch e.Kind {
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrRequest
	}
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is an API failure worth re-issuing.
func IsRetryable(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Retryable
}

// statusInfo is one row of the status classification table.
type statusInfo struct {
	title     string
	message   string
	retryable bool
}

var statusTable = map[int]statusInfo{
	http.StatusUnauthorized:        {"Unauthorized", "please log in again", false},
	http.StatusForbidden:           {"Forbidden", "you do not have permission to access this resource", false},
	http.StatusNotFound:            {"Not Found", "the requested resource does not exist", false},
	http.StatusRequestTimeout:      {"Busy/Timeout", "the server is busy, try again later", true},
	http.StatusTooManyRequests:     {"Busy/Timeout", "the server is busy, try again later", true},
	http.StatusInternalServerError: {"Server Unavailable", "the server is temporarily unavailable, try again later", true},
	http.StatusBadGateway:          {"Server Unavailable", "the server is temporarily unavailable, try again later", true},
	http.StatusServiceUnavailable:  {"Server Unavailable", "the server is temporarily unavailable, try again later", true},
	http.StatusGatewayTimeout:      {"Server Unavailable", "the server is temporarily unavailable, try again later", true},
}

// classifyStatus maps a non-2xx status to its title, message and retry
// policy. serverMessage is the backend's own message, if any; it replaces
// the generic text for 404 and for statuses outside the table.
func classifyStatus(status int, serverMessage string) (title, message string, retryable bool) {
	if info, ok := statusTable[status]; ok {
		message = info.message
		if status == http.StatusNotFound && serverMessage != "" {
			message = serverMessage
		}
		return info.title, message, info.retryable
	}
	if serverMessage != "" {
		return "Request Failed", serverMessage, true
	}
	return "Request Failed", fmt.Sprintf("request failed with status %d", status), true
}
