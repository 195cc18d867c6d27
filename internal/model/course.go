package model

import "time"

// Read-only projections of backend records, shaped for display. They carry no
// client-side identity beyond the backend-assigned id and are never mutated
// locally; every write waits for server confirmation.

type CourseView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Instructor  string  `json:"instructor,omitempty"`
}

type EnrollmentView struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	CourseID  string      `json:"courseId"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Course    *CourseView `json:"course,omitempty"`
}

type PaymentView struct {
	ID           string  `json:"id"`
	EnrollmentID string  `json:"enrollmentId"`
	UserID       string  `json:"userId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency,omitempty"`
	Status       string  `json:"status"`
	OrderID      string  `json:"orderId,omitempty"`
}

// OrderView is the gateway order the backend creates before the hosted
// checkout widget opens. Amount is in the gateway's smallest currency unit.
type OrderView struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}
