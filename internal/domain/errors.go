package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrCartClosed      = errors.New("cart is already attached to an order")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrOpenCartExists  = errors.New("customer already has an open cart")
	ErrAlreadyPaid     = errors.New("order is already paid")
	ErrPromoNotFound   = errors.New("promo code not found")

	ErrReturnWindowClosed    = errors.New("return window has expired")
	ErrReturnNotCancellable  = errors.New("return request is no longer pending")
	ErrItemsNotInOrder       = errors.New("selected items do not belong to this order")
	ErrPaymentSessionUnknown = errors.New("payment session not found")
)

// StockShortage describes one cart line that cannot be satisfied.
type StockShortage struct {
	Product     ProductRef `json:"product"`
	DisplayName string     `json:"displayName"`
	Requested   int        `json:"requested"`
	Available   int        `json:"available"`
}

// InsufficientStockError aborts order creation entirely; it carries the
// full list of unsatisfiable lines so the caller can show all of them.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("%s: available %d, requested %d", s.DisplayName, s.Available, s.Requested)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// AsInsufficientStock unwraps err into an InsufficientStockError if it is one.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}
