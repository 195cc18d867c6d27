package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub-web/internal/api"
	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/gateway"
	"learnhub-web/internal/model"
	"learnhub-web/pkg/apierror"
)

const enrollmentsPayload = `{"enrollments":[{
	"id":"e1","userId":"u1","courseId":"c1","status":"pending",
	"course":{"id":"c1","title":"Go Basics","price":499}
}]}`

func checkoutBackend(t *testing.T, orderStatus int, orderBody string, verifyStatus int, verifyBody string) *endpoint.Registry {
	t.Helper()

	return newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/enrollments/u1":
			w.Write([]byte(enrollmentsPayload))
		case "/payments/create-order":
			w.WriteHeader(orderStatus)
			w.Write([]byte(orderBody))
		case "/payments/verify":
			w.WriteHeader(verifyStatus)
			w.Write([]byte(verifyBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestCheckout_HappyPath(t *testing.T) {
	reg := checkoutBackend(t,
		http.StatusOK, `{"success":true,"order":{"id":"order_1","amount":49900,"currency":"INR"}}`,
		http.StatusOK, `{"success":true}`)

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")
	assert.Equal(t, CheckoutLoadingContext, f.State())

	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, CheckoutAwaitingAction, f.State())
	require.NotNil(t, f.Enrollment())
	assert.Equal(t, "Go Basics", f.Enrollment().Course.Title)

	desc, err := f.CreateOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CheckoutAwaitingGateway, f.State())
	assert.Equal(t, "rzp_test_key", desc.Key)
	assert.Equal(t, "order_1", desc.OrderID)
	assert.Equal(t, int64(49900), desc.Amount)
	assert.Equal(t, "INR", desc.Currency)
	assert.Equal(t, "LearnHub", desc.Name)
	assert.NotEmpty(t, desc.Receipt)

	err = f.Confirm(context.Background(), gateway.Confirmation{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, CheckoutComplete, f.State())
}

func TestCheckout_MissingEnrollmentIsTerminal(t *testing.T) {
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"enrollments":[]}`))
	}))

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")

	err := f.Load(context.Background())
	assert.ErrorIs(t, err, model.ErrContextMissing)
	assert.Equal(t, CheckoutContextMissing, f.State())

	_, err = f.CreateOrder(context.Background())
	assert.ErrorIs(t, err, model.ErrFlowState)
}

func TestCheckout_OrderFailureSurfacesBackendMessage(t *testing.T) {
	reg := checkoutBackend(t,
		http.StatusConflict, `{"success":false,"message":"insufficient course seats"}`,
		http.StatusOK, `{"success":true}`)

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")
	require.NoError(t, f.Load(context.Background()))

	_, err := f.CreateOrder(context.Background())
	require.Error(t, err)

	var srvErr *api.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "insufficient course seats", srvErr.Message)

	// The user stays on the payment page and may retry.
	assert.Equal(t, CheckoutAwaitingAction, f.State())
}

func TestCheckout_OrderBodySendsCoursePrice(t *testing.T) {
	var gotOrder map[string]any
	reg := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/enrollments/u1":
			w.Write([]byte(enrollmentsPayload))
		case "/payments/create-order":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotOrder))
			w.Write([]byte(`{"success":true,"order":{"id":"order_1","amount":49900,"currency":"INR"}}`))
		default:
			http.NotFound(w, r)
		}
	}))

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")
	require.NoError(t, f.Load(context.Background()))

	_, err := f.CreateOrder(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(499), gotOrder["amount"])
	assert.Equal(t, "e1", gotOrder["enrollmentId"])
	assert.Equal(t, "u1", gotOrder["userId"])
}

func TestCheckout_DismissReturnsToAwaitingAction(t *testing.T) {
	reg := checkoutBackend(t,
		http.StatusOK, `{"success":true,"order":{"id":"order_1","amount":49900,"currency":"INR"}}`,
		http.StatusOK, `{"success":true}`)

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")
	require.NoError(t, f.Load(context.Background()))

	_, err := f.CreateOrder(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.Dismiss())
	assert.Equal(t, CheckoutAwaitingAction, f.State())

	// A second attempt opens a fresh order.
	_, err = f.CreateOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CheckoutAwaitingGateway, f.State())
}

func TestCheckout_IncompleteConfirmationFails(t *testing.T) {
	reg := checkoutBackend(t,
		http.StatusOK, `{"success":true,"order":{"id":"order_1","amount":49900,"currency":"INR"}}`,
		http.StatusOK, `{"success":true}`)

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")
	require.NoError(t, f.Load(context.Background()))
	_, err := f.CreateOrder(context.Background())
	require.NoError(t, err)

	err = f.Confirm(context.Background(), gateway.Confirmation{OrderID: "order_1"})
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindGateway, apiErr.Kind)
	assert.Equal(t, CheckoutFailed, f.State())
}

func TestCheckout_VerificationFailureIsTerminal(t *testing.T) {
	reg := checkoutBackend(t,
		http.StatusOK, `{"success":true,"order":{"id":"order_1","amount":49900,"currency":"INR"}}`,
		http.StatusBadRequest, `{"success":false,"message":"signature mismatch"}`)

	f := NewCheckout(reg, gateway.NewBuilder("rzp_test_key", "LearnHub"), "e1", "u1")
	require.NoError(t, f.Load(context.Background()))
	_, err := f.CreateOrder(context.Background())
	require.NoError(t, err)

	err = f.Confirm(context.Background(), gateway.Confirmation{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: "bad",
	})
	require.Error(t, err)
	assert.Equal(t, CheckoutFailed, f.State())
}
