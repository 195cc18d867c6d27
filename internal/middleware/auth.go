package middleware

import (
	"encoding/json"
	"net/http"

	"learnhub-web/internal/model"
)

type sessionChecker interface {
	IsAuthenticated() bool
}

// RequireSession gates pages that need a logged-in user. A 401 here never
// clears the session: logout stays an explicit user action.
func RequireSession(sessions sessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAuthenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(model.APIResponse{
					Success: false,
					Error: &model.APIError{
						Code:    "UNAUTHORIZED",
						Message: "authentication required",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
