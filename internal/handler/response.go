package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"learnhub-web/internal/api"
	"learnhub-web/internal/model"
	"learnhub-web/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError maps the failure taxonomy to responses. Backend failures keep
// their status and message so pages can show them verbatim; a 401 from the
// backend is passed through without touching the session.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var srvErr *api.ServerError
	var netErr *api.NetworkError

	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.As(err, &srvErr) {
		status = srvErr.StatusCode
		body.Code = "UPSTREAM_ERROR"
		body.Message = srvErr.Message
		if body.Message == "" {
			body.Message = "backend request failed"
		}
	} else if errors.As(err, &netErr) {
		status = http.StatusBadGateway
		body.Code = "UPSTREAM_UNREACHABLE"
		body.Message = "could not reach the backend"
	} else if errors.Is(err, model.ErrInFlight) {
		status = http.StatusConflict
		body.Code = "IN_FLIGHT"
		body.Message = "a submission is already in progress"
	} else if errors.Is(err, model.ErrFlowState) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "action not allowed right now"
	} else if errors.Is(err, model.ErrCooldownActive) {
		status = http.StatusTooManyRequests
		body.Code = "COOLDOWN"
		body.Message = "please wait before requesting another code"
	} else if errors.Is(err, model.ErrContextMissing) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "enrollment not found"
	} else if errors.Is(err, model.ErrNotAuthenticated) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "authentication required"
	} else if errors.Is(err, model.ErrInvalidPhone) ||
		errors.Is(err, model.ErrInvalidOTP) ||
		errors.Is(err, model.ErrInvalidName) ||
		errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = err.Error()
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierror.Validation("BAD_REQUEST", "malformed request body", err.Error())
	}
	return nil
}
