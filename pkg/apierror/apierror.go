package apierror

import "fmt"

// Kind classifies a failure along the boundaries callers branch on: input
// rejected before any network call, no response received, a non-2xx response,
// the payment widget reporting cancellation or error, and everything else.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
	KindGateway    Kind = "gateway"
	KindUnknown    Kind = "unknown"
)

type APIError struct {
	Kind       Kind   `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(kind Kind, code string, message string, details string, status int) *APIError {
	return &APIError{Kind: kind, Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation is shorthand for the client-side input rejections every flow
// performs before touching the network.
func Validation(code string, message string, details string) *APIError {
	return New(KindValidation, code, message, details, 400)
}
