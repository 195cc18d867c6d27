package model

import "encoding/json"

// APIResponse is the envelope this server writes to its own callers.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Backend response shapes, decoded by the endpoint registry.

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *UserSummary `json:"user,omitempty"`
}

type CourseListResponse struct {
	Success bool         `json:"success"`
	Courses []CourseView `json:"courses"`
}

type EnrollmentListResponse struct {
	Enrollments []EnrollmentView `json:"enrollments"`
}

type PaymentResponse struct {
	Success bool         `json:"success"`
	Payment *PaymentView `json:"payment"`
}

type OrderResponse struct {
	Success bool         `json:"success"`
	Order   *OrderView   `json:"order"`
	Payment *PaymentView `json:"payment"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

type UserResponse struct {
	User *UserSummary `json:"user"`
}

type ContactResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
