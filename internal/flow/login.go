package flow

import (
	"context"
	"sync"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/model"
	"learnhub-web/internal/util"
)

type LoginState string

const (
	LoginCollectingPhone  LoginState = "collecting_phone"
	LoginAwaitingDispatch LoginState = "awaiting_otp_dispatch"
	LoginOtpSent          LoginState = "otp_sent"
)

// Login requests a login OTP for an existing account. Verification happens on
// the shared OTP page.
type Login struct {
	mu    sync.Mutex
	reg   *endpoint.Registry
	state LoginState
	busy  bool
	phone string
}

func NewLogin(reg *endpoint.Registry) *Login {
	return &Login{reg: reg, state: LoginCollectingPhone}
}

func (f *Login) SubmitPhone(ctx context.Context, countryCode string, number string) (string, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return "", model.ErrInFlight
	}
	if f.state != LoginCollectingPhone {
		f.mu.Unlock()
		return "", model.ErrFlowState
	}

	phone, err := util.NormalizePhone(countryCode, number)
	if err != nil {
		f.mu.Unlock()
		return "", err
	}

	f.busy = true
	f.state = LoginAwaitingDispatch
	f.mu.Unlock()

	_, err = endpoint.RequestLoginOTP.Call(ctx, f.reg, endpoint.LoginOTPArgs{Phone: phone})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		f.state = LoginCollectingPhone
		return "", err
	}

	f.state = LoginOtpSent
	f.phone = phone
	return phone, nil
}

func (f *Login) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Login) Phone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}
