package handler

import (
	"net/http"
	"sync"
	"time"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/flow"
	"learnhub-web/internal/model"
	"learnhub-web/pkg/apierror"
)

// AuthHandler drives the registration, login and OTP verification flows.
// Verification flows are kept per phone so the resend cooldown survives
// across requests from the same page.
type AuthHandler struct {
	reg      *endpoint.Registry
	cooldown time.Duration

	mu            sync.Mutex
	verifications map[string]*flow.OTPVerification
}

func NewAuthHandler(reg *endpoint.Registry, cooldown time.Duration) *AuthHandler {
	return &AuthHandler{
		reg:           reg,
		cooldown:      cooldown,
		verifications: map[string]*flow.OTPVerification{},
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input model.RegistrationInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	f := flow.NewRegistration(h.reg)
	if err := f.SubmitName(input.FirstName, input.LastName); err != nil {
		writeError(w, err)
		return
	}

	phone, err := f.SubmitPhone(r.Context(), input.CountryCode, input.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	h.putVerification(phone, flow.NewOTPVerification(h.reg, phone, f.Name(), true, h.cooldown))

	writeSuccess(w, http.StatusOK, map[string]any{
		"phone": phone,
		"next":  "/verify-otp",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input model.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	f := flow.NewLogin(h.reg)
	phone, err := f.SubmitPhone(r.Context(), input.CountryCode, input.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	h.putVerification(phone, flow.NewOTPVerification(h.reg, phone, "", false, h.cooldown))

	writeSuccess(w, http.StatusOK, map[string]any{
		"phone": phone,
		"next":  "/verify-otp",
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input model.OTPSubmitInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	v := h.getVerification(input.Phone)
	if v == nil {
		writeError(w, apierror.New(apierror.KindValidation, "NOT_FOUND",
			"no pending verification for this phone", "", http.StatusNotFound))
		return
	}

	res, err := v.Submit(r.Context(), input.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	h.dropVerification(input.Phone)

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": res.Message,
		"session": h.reg.Session().Snapshot(),
	})
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	v := h.getVerification(input.Phone)
	if v == nil {
		writeError(w, apierror.New(apierror.KindValidation, "NOT_FOUND",
			"no pending verification for this phone", "", http.StatusNotFound))
		return
	}

	if err := v.Resend(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"resendIn": int(v.ResendIn().Seconds()),
	})
}

// Logout calls the backend and always ends with a cleared session; the
// endpoint hook clears it even when the backend call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	res, err := endpoint.Logout.Call(r.Context(), h.reg, struct{}{})
	if err != nil {
		writeSuccess(w, http.StatusOK, map[string]any{"message": "logged out"})
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": res.Message})
}

func (h *AuthHandler) Session(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.reg.Session().Snapshot())
}

func (h *AuthHandler) putVerification(phone string, v *flow.OTPVerification) {
	h.mu.Lock()
	h.verifications[phone] = v
	h.mu.Unlock()
}

func (h *AuthHandler) getVerification(phone string) *flow.OTPVerification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifications[phone]
}

func (h *AuthHandler) dropVerification(phone string) {
	h.mu.Lock()
	delete(h.verifications, phone)
	h.mu.Unlock()
}
