package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub-web/internal/model"
)

func TestRegistration_HappyPath(t *testing.T) {
	var gotBody map[string]string
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup/request-otp", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"message":"otp sent"}`))
	}))

	f := NewRegistration(reg)
	assert.Equal(t, RegCollectingName, f.State())

	require.NoError(t, f.SubmitName("Jane", "Doe"))
	assert.Equal(t, "JaneDoe", f.Name())
	assert.Equal(t, RegCollectingPhone, f.State())

	phone, err := f.SubmitPhone(context.Background(), "+91", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", phone)
	assert.Equal(t, RegOtpSent, f.State())
	assert.Equal(t, "+919876543210", f.Phone())

	assert.Equal(t, "+919876543210", gotBody["phone"])
	assert.Equal(t, "JaneDoe", gotBody["name"])
}

func TestRegistration_DefaultCountryCode(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"otp sent"}`))
	}))

	f := NewRegistration(reg)
	require.NoError(t, f.SubmitName("Jane", ""))

	phone, err := f.SubmitPhone(context.Background(), "", "98765 43210")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", phone)
}

func TestRegistration_PhoneBeforeNameRejected(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	f := NewRegistration(reg)
	_, err := f.SubmitPhone(context.Background(), "+91", "9876543210")
	assert.ErrorIs(t, err, model.ErrFlowState)
}

func TestRegistration_EmptyFirstNameRejected(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	f := NewRegistration(reg)
	err := f.SubmitName("  ", "Doe")
	assert.ErrorIs(t, err, model.ErrInvalidName)
	assert.Equal(t, RegCollectingName, f.State())
}

func TestRegistration_InvalidPhoneRejectedLocally(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	f := NewRegistration(reg)
	require.NoError(t, f.SubmitName("Jane", "Doe"))

	for _, number := range []string{"12345", "98765432101", "98765abcde", ""} {
		_, err := f.SubmitPhone(context.Background(), "+91", number)
		assert.ErrorIs(t, err, model.ErrInvalidPhone, "number %q", number)
	}
	assert.Equal(t, RegCollectingPhone, f.State())
}

func TestRegistration_DispatchFailureRetainsInput(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"sms provider down"}`))
	}))

	f := NewRegistration(reg)
	require.NoError(t, f.SubmitName("Jane", "Doe"))

	_, err := f.SubmitPhone(context.Background(), "+91", "9876543210")
	require.Error(t, err)

	assert.Equal(t, RegCollectingPhone, f.State())
	input := f.Input()
	assert.Equal(t, "Jane", input.FirstName)
	assert.Equal(t, "Doe", input.LastName)
	assert.Equal(t, "9876543210", input.Phone)
	assert.Equal(t, "+91", input.CountryCode)
}
