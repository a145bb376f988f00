package domain

import (
	"context"
	"time"
)

const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusCanceled = "canceled"
	ReturnStatusPaid     = "paid"
)

// ReturnWindow is how long after the order date a customer may submit
// a return request.
const ReturnWindow = 14 * 24 * time.Hour

// ReturnRequest covers a subset of an order's cart lines.
type ReturnRequest struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	OrderID       string    `json:"orderId"`
	ItemIDs       []string  `json:"itemIds"` // cart item ids belonging to the order's cart
	Reason        string    `json:"reason"`
	Details       string    `json:"details"`
	AttachmentURL *string   `json:"attachmentUrl"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ReturnRepository interface {
	CreateReturn(ctx context.Context, rr *ReturnRequest) error
	GetReturnByID(ctx context.Context, id string) (*ReturnRequest, error)
	GetReturnsByCustomer(ctx context.Context, customerID string) ([]ReturnRequest, error)
	UpdateReturnStatus(ctx context.Context, id, status string) error
	DeleteReturn(ctx context.Context, id string) error
}
