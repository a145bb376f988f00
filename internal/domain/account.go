package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type contextKey string

// UserContextKey is where the auth middleware stashes the caller.
const UserContextKey contextKey = "user"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Role      string `json:"role"` // customer, admin
}

type Notification struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Text       string    `json:"text"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LoyaltyStatus reports the customer's lifetime-spend discount tier.
type LoyaltyStatus struct {
	TotalSpent          decimal.Decimal `json:"totalSpent"`
	DiscountPercent     int             `json:"discountPercent"`
	NextThreshold       decimal.Decimal `json:"nextThreshold"`
	NextDiscountPercent int             `json:"nextDiscountPercent"`
	AmountLeft          decimal.Decimal `json:"amountLeft"`
}

type AccountRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateContact(ctx context.Context, user *User) error

	// Wishlist holds albums the customer wants to be notified about.
	AddToWishlist(ctx context.Context, customerID string, ref ProductRef) error
	RemoveFromWishlist(ctx context.Context, customerID string, ref ProductRef) error
	GetWishlist(ctx context.Context, customerID string) ([]ProductRef, error)
	// CustomersWishing lists customers who have the product wishlisted,
	// for back-in-stock fan-out.
	CustomersWishing(ctx context.Context, ref ProductRef) ([]string, error)

	AddToFavorites(ctx context.Context, customerID string, ref ProductRef) error
	RemoveFromFavorites(ctx context.Context, customerID string, ref ProductRef) error
	GetFavorites(ctx context.Context, customerID string) ([]ProductRef, error)

	CreateNotification(ctx context.Context, n *Notification) error
	UnreadNotifications(ctx context.Context, customerID string) ([]Notification, error)
	MarkNotificationsRead(ctx context.Context, customerID string) error
}
