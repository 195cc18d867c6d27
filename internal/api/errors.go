package api

import (
	"encoding/json"
	"fmt"
)

// NetworkError means no response was received: DNS failure, refused
// connection, timeout. Status is the sentinel 0.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means a response was received with a non-2xx status. Message is
// the backend-provided message when the payload carried one.
type ServerError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

// backendMessage pulls a human-readable message out of an error payload.
// The backend is inconsistent about the field it uses.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
