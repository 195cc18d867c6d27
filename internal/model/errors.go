package model

import "errors"

var (
	// Flow related errors
	ErrInFlight       = errors.New("a submission is already in flight")
	ErrFlowState      = errors.New("action not allowed in current flow state")
	ErrCooldownActive = errors.New("resend cooldown has not elapsed")
	ErrContextMissing = errors.New("checkout context not found")

	// Input related errors
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidOTP   = errors.New("invalid otp code")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidInput = errors.New("invalid input")

	// Session related errors
	ErrNotAuthenticated = errors.New("not authenticated")
)
