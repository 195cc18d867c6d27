package model

import "time"

// UserSummary is the client-side projection of a backend user record. It is
// replaced wholesale whenever the backend echoes a user back after a mutation.
type UserSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	ProfileURL string    `json:"profileURL,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// Session is a read-only snapshot of the auth state container.
// IsAuthenticated is true if and only if Token is non-empty.
type Session struct {
	User            *UserSummary `json:"user,omitempty"`
	Token           string       `json:"-"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Loading         bool         `json:"loading"`
}
