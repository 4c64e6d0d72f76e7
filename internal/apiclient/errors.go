package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const networkErrorMessage = "Network error"

// ErrNetwork is returned when the request never produced a response.
var ErrNetwork = errors.New(networkErrorMessage)

// NetworkError wraps the transport failure behind ErrNetwork. Its message is
// always the generic one so it can be shown to users.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return networkErrorMessage
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNetwork) hold for every NetworkError.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// APIError is a non-2xx answer from the backend. Message is meant to be shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// MalformedResponseError is returned when a 2xx body does not match the expected schema.
type MalformedResponseError struct {
	Operation string
	Err       error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Operation, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type validationItem struct {
	Msg string `json:"msg"`
}

// errorMessage extracts the user-facing message from an error body of the form
// {"detail": "..."} or {"detail": [{"msg": "..."}, ...]}.
func errorMessage(status int, body []byte) string {
	if !json.Valid(body) {
		return networkErrorMessage
	}

	fallback := fmt.Sprintf("Error %d", status)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fallback
	}
	detail, ok := envelope["detail"]
	if !ok {
		return fallback
	}

	var text string
	if err := json.Unmarshal(detail, &text); err == nil {
		if text == "" {
			return fallback
		}
		return text
	}

	var items []validationItem
	if err := json.Unmarshal(detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) == 0 {
			return fallback
		}
		return strings.Join(msgs, ", ")
	}

	return fallback
}
