package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckoutLineItem is one line sent to the hosted checkout page.
// UnitAmount is in minor currency units (e.g. cents).
type CheckoutLineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UnitAmount  int64  `json:"unitAmount"`
	Quantity    int    `json:"quantity"`
}

// CheckoutRequest opens a hosted payment session. DiscountAmount, when
// positive, is applied as a one-off flat coupon against the line total.
type CheckoutRequest struct {
	LineItems      []CheckoutLineItem `json:"lineItems"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Currency       string             `json:"currency"`
	SuccessURL     string             `json:"successUrl"`
	CancelURL      string             `json:"cancelUrl"`
	Metadata       map[string]string  `json:"metadata"`
}

type CheckoutSession struct {
	ID          string `json:"id"`
	RedirectURL string `json:"url"`
}

// WebhookEvent is a verified, decoded gateway notification.
type WebhookEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId"`
	Metadata  map[string]string `json:"metadata"`
}

// EventCheckoutCompleted is the only event type the order lifecycle
// reacts to; everything else is acknowledged and dropped.
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentGateway is the boundary to the external hosted-checkout
// processor. It must deliver a "payment completed" signal at least once,
// via the user redirect and/or the webhook; MarkPaid absorbs duplicates.
type PaymentGateway interface {
	OpenSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
