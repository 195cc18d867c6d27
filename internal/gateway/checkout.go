// Package gateway models the hosted payment checkout widget. The widget runs
// in the browser; this side builds the descriptor it opens with and validates
// the confirmation it posts back. Webhook verification stays on the backend.
package gateway

import (
	"net/http"

	"github.com/google/uuid"

	"learnhub-web/internal/model"
	"learnhub-web/pkg/apierror"
)

// Confirmation is what the widget reports after a successful payment. The
// signature is verified by the backend, never here.
type Confirmation struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Validate rejects confirmations with missing fields; a widget that reports
// without all three is a gateway failure, not a server one.
func (c Confirmation) Validate() error {
	if c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return apierror.New(apierror.KindGateway, "GATEWAY_ERROR",
			"incomplete confirmation from payment gateway", "", http.StatusBadGateway)
	}
	return nil
}

// Descriptor carries everything the hosted widget needs to open: the public
// key, the backend-created order and display fields.
type Descriptor struct {
	Key         string `json:"key"`
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Receipt     string `json:"receipt"`
}

type Builder struct {
	keyID       string
	displayName string
}

func NewBuilder(keyID string, displayName string) *Builder {
	return &Builder{keyID: keyID, displayName: displayName}
}

func (b *Builder) Describe(order *model.OrderView, description string) Descriptor {
	return Descriptor{
		Key:         b.keyID,
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        b.displayName,
		Description: description,
		Receipt:     uuid.NewString(),
	}
}
