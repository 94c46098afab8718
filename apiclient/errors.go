package apiclient

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
)

// DefaultErrorMessage is shown when a failure carries no usable message.
const DefaultErrorMessage = "An error occurred"

const (
	sessionExpiredMessage = "Your session has expired. Please log in again."
	networkErrorMessage   = "Network error: unable to reach the server"
)

// APIError is a 4xx/5xx response from the API.
type APIError struct {
	Status  int
	Message string              // From the body's detail/error/message field, else DefaultErrorMessage
	Fields  map[string][]string // Field-keyed validation messages, when the body carries them
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TransportError means no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newAPIError extracts the human message from an error body. Bodies look like
// {"detail": "..."} or {"error": "..."} or {"field": ["msg", ...]}.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: DefaultErrorMessage, Body: body}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return apiErr
	}

	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			apiErr.Message = msg
			break
		}
	}

	for key, raw := range fields {
		switch key {
		case "detail", "error", "message":
			continue
		}
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			var msg string
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			msgs = []string{msg}
		}
		if apiErr.Fields == nil {
			apiErr.Fields = make(map[string][]string)
		}
		apiErr.Fields[key] = msgs
	}
	return apiErr
}

// Message derives the text shown to the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apperrors.Is(err, apperrors.ErrSessionExpired) {
		return sessionExpiredMessage
	}
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return DefaultErrorMessage
	}
	var transportErr *TransportError
	if apperrors.As(err, &transportErr) {
		return networkErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
