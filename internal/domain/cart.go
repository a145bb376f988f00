package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single open basket of one customer. Aggregates are cached
// columns, recomputed synchronously on every mutation: after any
// successful mutating call the invariant
//
//	FinalPrice == max(0, Σ qty×discounted_unit − promo_discount_if_valid)
//
// holds without any separate refresh step.
type Cart struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customerId"`
	InOrder       bool            `json:"inOrder"`
	TotalItems    int             `json:"totalItems"`
	OriginalPrice decimal.Decimal `json:"originalPrice"` // pre-discount sum, for "you saved X"
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	AppliedPromo  *string         `json:"appliedPromoId"` // promo code id
	Items         []CartItem      `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CartItem is one product-and-quantity row. Exactly one row exists per
// (cart, product kind, product id); adding the same product again
// increments the quantity instead of duplicating the row.
type CartItem struct {
	ID          string          `json:"id"`
	CartID      string          `json:"cartId"`
	Product     ProductRef      `json:"product"`
	DisplayName string          `json:"displayName"` // enriched, not persisted
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"` // qty × discounted unit price at last save
}

// UnitPrice derives the per-unit price from the cached line total.
func (i *CartItem) UnitPrice() decimal.Decimal {
	if i.Quantity <= 0 {
		return decimal.Zero
	}
	return i.LineTotal.Div(decimal.NewFromInt(int64(i.Quantity)))
}

type CartRepository interface {
	// GetOpenCartByCustomer returns the customer's open (not in_order)
	// cart with its items, or nil when none exists.
	GetOpenCartByCustomer(ctx context.Context, customerID string) (*Cart, error)
	GetCartByID(ctx context.Context, id string) (*Cart, error)

	// CreateCart inserts an open cart. A concurrent create for the same
	// customer hits the partial unique index and returns ErrOpenCartExists.
	CreateCart(ctx context.Context, cart *Cart) error

	GetItems(ctx context.Context, cartID string) ([]CartItem, error)
	// GetItemByRef returns the cart's line for the product, or nil when
	// the cart has no such line.
	GetItemByRef(ctx context.Context, cartID string, ref ProductRef) (*CartItem, error)
	InsertItem(ctx context.Context, item *CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	UpdateItemLineTotal(ctx context.Context, itemID string, lineTotal decimal.Decimal) error
	DeleteItem(ctx context.Context, itemID string) error
	DeleteItems(ctx context.Context, cartID string) error

	// UpdateAggregates persists the cached totals and the promo reference.
	UpdateAggregates(ctx context.Context, cart *Cart) error
	SetInOrder(ctx context.Context, cartID string, inOrder bool) error
}
