package handler

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/flow"
	"learnhub-web/internal/gateway"
	"learnhub-web/internal/model"
)

// PaymentHandler drives the checkout flow and the payment projections.
// Checkout flows are kept per enrollment so the state machine spans the
// order / confirm / dismiss requests of one payment attempt.
type PaymentHandler struct {
	reg     *endpoint.Registry
	builder *gateway.Builder

	mu        sync.Mutex
	checkouts map[string]*flow.Checkout
}

func NewPaymentHandler(reg *endpoint.Registry, builder *gateway.Builder) *PaymentHandler {
	return &PaymentHandler{
		reg:       reg,
		builder:   builder,
		checkouts: map[string]*flow.Checkout{},
	}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	enrollmentID := chi.URLParam(r, "enrollment_id")

	user := h.reg.Session().Snapshot().User
	if user == nil || user.ID == "" {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	f := h.checkout(enrollmentID, user.ID)
	if f.State() == flow.CheckoutLoadingContext {
		if err := f.Load(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}

	desc, err := f.CreateOrder(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"checkout": desc})
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	enrollmentID := chi.URLParam(r, "enrollment_id")

	var conf gateway.Confirmation
	if err := decodeJSON(r, &conf); err != nil {
		writeError(w, err)
		return
	}

	f := h.lookup(enrollmentID)
	if f == nil {
		writeError(w, model.ErrContextMissing)
		return
	}

	if err := f.Confirm(r.Context(), conf); err != nil {
		writeError(w, err)
		return
	}

	h.drop(enrollmentID)

	writeSuccess(w, http.StatusOK, map[string]any{
		"status":   "verified",
		"redirect": "/dashboard",
	})
}

func (h *PaymentHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	f := h.lookup(chi.URLParam(r, "enrollment_id"))
	if f == nil {
		writeError(w, model.ErrContextMissing)
		return
	}

	if err := f.Dismiss(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"status": "dismissed"})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := endpoint.FetchPayment.Subscribe(h.reg, chi.URLParam(r, "payment_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	res, err := sub.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"payment": res.Payment})
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, err := endpoint.DeletePayment.Call(r.Context(), h.reg, chi.URLParam(r, "payment_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (h *PaymentHandler) checkout(enrollmentID string, userID string) *flow.Checkout {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.checkouts[enrollmentID]
	if !ok {
		f = flow.NewCheckout(h.reg, h.builder, enrollmentID, userID)
		h.checkouts[enrollmentID] = f
	}
	return f
}

func (h *PaymentHandler) lookup(enrollmentID string) *flow.Checkout {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checkouts[enrollmentID]
}

func (h *PaymentHandler) drop(enrollmentID string) {
	h.mu.Lock()
	delete(h.checkouts, enrollmentID)
	h.mu.Unlock()
}
