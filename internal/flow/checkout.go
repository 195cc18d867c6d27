package flow

import (
	"context"
	"fmt"
	"sync"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/gateway"
	"learnhub-web/internal/model"
)

type CheckoutState string

const (
	CheckoutLoadingContext  CheckoutState = "loading_course_context"
	CheckoutContextMissing  CheckoutState = "context_missing"
	CheckoutAwaitingAction  CheckoutState = "awaiting_user_action"
	CheckoutCreatingOrder   CheckoutState = "creating_order"
	CheckoutAwaitingGateway CheckoutState = "opening_gateway_widget"
	CheckoutVerifying       CheckoutState = "verifying_with_backend"
	CheckoutComplete        CheckoutState = "verified_success"
	CheckoutFailed          CheckoutState = "error"
)

// Checkout drives the payment page: load the enrollment context, create a
// gateway order, hand the widget descriptor to the page, then verify the
// confirmation with the backend. A dismissed widget returns to awaiting the
// user; a verification failure is terminal for this attempt.
type Checkout struct {
	mu           sync.Mutex
	reg          *endpoint.Registry
	builder      *gateway.Builder
	enrollmentID string
	userID       string
	state        CheckoutState
	busy         bool
	enrollment   *model.EnrollmentView
	order        *model.OrderView
}

func NewCheckout(reg *endpoint.Registry, builder *gateway.Builder, enrollmentID string, userID string) *Checkout {
	return &Checkout{
		reg:          reg,
		builder:      builder,
		enrollmentID: enrollmentID,
		userID:       userID,
		state:        CheckoutLoadingContext,
	}
}

// Load fetches the user's enrollments through the cache and locates the one
// being paid for. A missing enrollment is a terminal context error.
func (f *Checkout) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return model.ErrInFlight
	}
	if f.state != CheckoutLoadingContext {
		f.mu.Unlock()
		return model.ErrFlowState
	}
	f.busy = true
	f.mu.Unlock()

	sub, err := endpoint.FetchEnrollments.Subscribe(f.reg, f.userID)
	var res model.EnrollmentListResponse
	if err == nil {
		defer sub.Close()
		res, err = sub.Get(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		return err
	}

	for i := range res.Enrollments {
		if res.Enrollments[i].ID == f.enrollmentID {
			f.enrollment = &res.Enrollments[i]
			f.state = CheckoutAwaitingAction
			return nil
		}
	}

	f.state = CheckoutContextMissing
	return model.ErrContextMissing
}

// CreateOrder asks the backend for a gateway order and returns the widget
// descriptor. On failure the flow stays on the payment page awaiting the user,
// with the backend's message surfaced verbatim.
func (f *Checkout) CreateOrder(ctx context.Context) (gateway.Descriptor, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return gateway.Descriptor{}, model.ErrInFlight
	}
	if f.state != CheckoutAwaitingAction {
		f.mu.Unlock()
		return gateway.Descriptor{}, model.ErrFlowState
	}

	enrollment := f.enrollment
	if enrollment == nil || enrollment.Course == nil {
		f.mu.Unlock()
		return gateway.Descriptor{}, fmt.Errorf("%w: enrollment has no course attached", model.ErrContextMissing)
	}

	f.busy = true
	f.state = CheckoutCreatingOrder
	f.mu.Unlock()

	res, err := endpoint.CreatePaymentOrder.Call(ctx, f.reg, endpoint.CreateOrderArgs{
		Amount:       enrollment.Course.Price,
		EnrollmentID: f.enrollmentID,
		UserID:       f.userID,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		f.state = CheckoutAwaitingAction
		return gateway.Descriptor{}, err
	}
	if res.Order == nil {
		f.state = CheckoutAwaitingAction
		return gateway.Descriptor{}, fmt.Errorf("backend returned no order")
	}

	f.order = res.Order
	f.state = CheckoutAwaitingGateway
	return f.builder.Describe(res.Order, enrollment.Course.Title), nil
}

// Confirm verifies the widget's confirmation with the backend.
func (f *Checkout) Confirm(ctx context.Context, conf gateway.Confirmation) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return model.ErrInFlight
	}
	if f.state != CheckoutAwaitingGateway {
		f.mu.Unlock()
		return model.ErrFlowState
	}

	if err := conf.Validate(); err != nil {
		f.state = CheckoutFailed
		f.mu.Unlock()
		return err
	}

	amount := f.enrollment.Course.Price
	f.busy = true
	f.state = CheckoutVerifying
	f.mu.Unlock()

	_, err := endpoint.VerifyPayment.Call(ctx, f.reg, endpoint.VerifyPaymentArgs{
		RazorpayOrderID:   conf.OrderID,
		RazorpayPaymentID: conf.PaymentID,
		RazorpaySignature: conf.Signature,
		EnrollmentID:      f.enrollmentID,
		UserID:            f.userID,
		Amount:            amount,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		f.state = CheckoutFailed
		return err
	}

	f.state = CheckoutComplete
	return nil
}

// Dismiss records that the user closed the widget without paying.
func (f *Checkout) Dismiss() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return model.ErrInFlight
	}
	if f.state != CheckoutAwaitingGateway {
		return model.ErrFlowState
	}

	f.state = CheckoutAwaitingAction
	return nil
}

func (f *Checkout) State() CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Checkout) Enrollment() *model.EnrollmentView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enrollment
}

func (f *Checkout) Order() *model.OrderView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}
