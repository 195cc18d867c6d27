package flow

import (
	"context"
	"sync"
	"time"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/model"
)

type OTPState string

const (
	OTPAwaitingInput OTPState = "awaiting_input"
	OTPSubmitting    OTPState = "submitting"
	OTPVerified      OTPState = "verified"
)

// OTPVerification drives the code-entry page for both signup and login. A
// resend is allowed only after a fixed cooldown; resending resets the timer.
type OTPVerification struct {
	mu       sync.Mutex
	reg      *endpoint.Registry
	phone    string
	name     string
	signup   bool
	cooldown time.Duration
	now      func() time.Time
	resendAt time.Time
	busy     bool
	state    OTPState
}

func NewOTPVerification(reg *endpoint.Registry, phone string, name string, signup bool, cooldown time.Duration) *OTPVerification {
	f := &OTPVerification{
		reg:      reg,
		phone:    phone,
		name:     name,
		signup:   signup,
		cooldown: cooldown,
		now:      time.Now,
		state:    OTPAwaitingInput,
	}
	// The OTP was dispatched just before this page loads.
	f.resendAt = f.now().Add(cooldown)
	return f
}

// Submit verifies the entered code. On success the endpoint's completion hook
// has already stored the credentials into the session; on rejection the flow
// returns to awaiting input.
func (f *OTPVerification) Submit(ctx context.Context, code string) (model.AuthResponse, error) {
	if !validOTP(code) {
		return model.AuthResponse{}, model.ErrInvalidOTP
	}

	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return model.AuthResponse{}, model.ErrInFlight
	}
	if f.state != OTPAwaitingInput {
		f.mu.Unlock()
		return model.AuthResponse{}, model.ErrFlowState
	}
	f.busy = true
	f.state = OTPSubmitting
	f.mu.Unlock()

	f.reg.Session().SetLoading(true)
	defer f.reg.Session().SetLoading(false)

	var res model.AuthResponse
	var err error
	if f.signup {
		res, err = endpoint.VerifySignupOTP.Call(ctx, f.reg, endpoint.VerifySignupArgs{Phone: f.phone, Otp: code, Name: f.name})
	} else {
		res, err = endpoint.VerifyLoginOTP.Call(ctx, f.reg, endpoint.VerifyLoginArgs{Phone: f.phone, Otp: code})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		f.state = OTPAwaitingInput
		return model.AuthResponse{}, err
	}

	f.state = OTPVerified
	return res, nil
}

// Resend requests a fresh OTP. Rejected while the cooldown is running; a
// successful resend restarts it.
func (f *OTPVerification) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return model.ErrInFlight
	}
	if f.now().Before(f.resendAt) {
		f.mu.Unlock()
		return model.ErrCooldownActive
	}
	f.busy = true
	f.mu.Unlock()

	var err error
	if f.signup {
		_, err = endpoint.RequestSignupOTP.Call(ctx, f.reg, endpoint.SignupOTPArgs{Phone: f.phone, Name: f.name})
	} else {
		_, err = endpoint.RequestLoginOTP.Call(ctx, f.reg, endpoint.LoginOTPArgs{Phone: f.phone})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		return err
	}

	f.resendAt = f.now().Add(f.cooldown)
	return nil
}

// ResendIn reports how long until a resend is allowed, zero when it already is.
func (f *OTPVerification) ResendIn() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	remaining := f.resendAt.Sub(f.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (f *OTPVerification) State() OTPState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *OTPVerification) Phone() string { return f.phone }

func validOTP(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
