// Package flow holds the page-level state machines: registration, OTP
// verification, login and checkout. Each is user-driven and single-flight; a
// submission while one is in flight is rejected, and failures leave the
// collected input intact for correction.
package flow

import (
	"context"
	"sync"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/model"
	"learnhub-web/internal/util"
)

type RegistrationState string

const (
	RegCollectingName   RegistrationState = "collecting_name"
	RegCollectingPhone  RegistrationState = "collecting_phone"
	RegAwaitingDispatch RegistrationState = "awaiting_otp_dispatch"
	RegOtpSent          RegistrationState = "otp_sent"
)

type Registration struct {
	mu    sync.Mutex
	reg   *endpoint.Registry
	state RegistrationState
	busy  bool
	input model.RegistrationInput
	name  string
	phone string
}

func NewRegistration(reg *endpoint.Registry) *Registration {
	return &Registration{reg: reg, state: RegCollectingName}
}

// SubmitName validates and stores the name step. The backend expects a single
// name field, first and last concatenated.
func (f *Registration) SubmitName(first string, last string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != RegCollectingName {
		return model.ErrFlowState
	}

	name, err := util.ComposeName(first, last)
	if err != nil {
		return err
	}

	f.input.FirstName = first
	f.input.LastName = last
	f.name = name
	f.state = RegCollectingPhone
	return nil
}

// SubmitPhone normalizes the phone and dispatches the signup OTP. On dispatch
// failure the flow returns to collecting the phone with the input retained.
func (f *Registration) SubmitPhone(ctx context.Context, countryCode string, number string) (string, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return "", model.ErrInFlight
	}
	if f.state != RegCollectingPhone {
		f.mu.Unlock()
		return "", model.ErrFlowState
	}

	phone, err := util.NormalizePhone(countryCode, number)
	if err != nil {
		f.mu.Unlock()
		return "", err
	}

	f.input.CountryCode = countryCode
	f.input.Phone = number
	f.busy = true
	f.state = RegAwaitingDispatch
	name := f.name
	f.mu.Unlock()

	_, err = endpoint.RequestSignupOTP.Call(ctx, f.reg, endpoint.SignupOTPArgs{Phone: phone, Name: name})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		f.state = RegCollectingPhone
		return "", err
	}

	f.state = RegOtpSent
	f.phone = phone
	return phone, nil
}

func (f *Registration) State() RegistrationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Registration) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

// Phone returns the normalized phone the OTP was sent to, carried over to the
// verification page.
func (f *Registration) Phone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}

// Input returns the collected form input, kept for correction after failures.
func (f *Registration) Input() model.RegistrationInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}
