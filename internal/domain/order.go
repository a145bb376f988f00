package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusCreated    = "created"     // payment session opened, not yet paid
	OrderStatusInProgress = "in_progress" // payment confirmed, fulfillment done
	OrderStatusCompleted  = "completed"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Order is a durable snapshot request created from exactly one cart at
// checkout. It references the cart rather than copying its lines; the
// charged amount is frozen on the Payment row, line data reads through
// to live product state.
type Order struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customerId"`
	CartID     string     `json:"cartId"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	BuyingType string     `json:"buyingType"` // delivery, self_pickup
	Comment    string     `json:"comment"`
	Status     string     `json:"status"`
	Paid       bool       `json:"paid"`
	OrderDate  time.Time  `json:"orderDate"`
	CreatedAt  time.Time  `json:"createdAt"`
	Cart       *Cart      `json:"cart,omitempty"`
	Payments   []Payment  `json:"payments,omitempty"`
}

// Payment tracks the active external checkout attempt for an order.
type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	SessionID string          `json:"sessionId"` // external checkout session id
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Method    string          `json:"method"`
	PaidAt    *time.Time      `json:"paidAt"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ShippingInfo is the customer-entered contact block captured at checkout.
type ShippingInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	BuyingType string `json:"buyingType"`
	Comment    string `json:"comment"`
}

type OrderRepository interface {
	// CreateOrder inserts the order. A cart can carry at most one order;
	// a concurrent checkout for the same cart returns ErrCartClosed.
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// GetOrderByIDForUpdate acquires a row-level lock on the order for
	// the remainder of the surrounding transaction. MarkPaid relies on
	// it to serialize the redirect and webhook triggers.
	GetOrderByIDForUpdate(ctx context.Context, id string) (*Order, error)

	GetOrdersByCustomer(ctx context.Context, customerID string) ([]Order, error)
	SetPaid(ctx context.Context, orderID string, status string) error
	DeleteOrder(ctx context.Context, orderID string) error

	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentBySessionID(ctx context.Context, sessionID string) (*Payment, error)
	MarkPaymentSucceeded(ctx context.Context, orderID string, paidAt time.Time) error

	// SumPaidByCustomer totals successful payment amounts for loyalty tiers.
	SumPaidByCustomer(ctx context.Context, customerID string) (decimal.Decimal, error)
}
