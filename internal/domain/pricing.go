package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceList is a dated table mapping products to base prices.
// At most one list is active at a time (enforced by a partial unique index).
type PriceList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type PriceListEntry struct {
	PriceListID string          `json:"priceListId"`
	Product     ProductRef      `json:"product"`
	Price       decimal.Decimal `json:"price"`
}

// Promotion is a time-bounded percentage discount applied automatically
// to the products it lists.
type Promotion struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"` // 0..100
	IsActive           bool            `json:"isActive"`
}

// InWindow reports whether the promotion applies at the given instant.
func (p *Promotion) InWindow(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// PriceQuote is the catalog's answer for one product "as of now".
// A zero CurrentPrice means "no price set": the product is effectively
// unavailable for purchase, not free.
type PriceQuote struct {
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountedPrice    decimal.Decimal `json:"discountedPrice"`
}

type PricingRepository interface {
	// GetActivePriceList returns the single active price list, or nil
	// when none is flagged active.
	GetActivePriceList(ctx context.Context) (*PriceList, error)

	// GetEntryPrice returns the base price for (priceList, product).
	// ok is false when the list has no entry for the product.
	GetEntryPrice(ctx context.Context, priceListID string, ref ProductRef) (price decimal.Decimal, ok bool, err error)
	GetEntryPrices(ctx context.Context, priceListID string, refs []ProductRef) (map[ProductRef]decimal.Decimal, error)

	// BestPromotionFor returns the active, in-window promotion listing the
	// product with the highest discount percentage (ties broken by
	// insertion order), or nil when none applies.
	BestPromotionFor(ctx context.Context, ref ProductRef, now time.Time) (*Promotion, error)
	BestPromotionsFor(ctx context.Context, refs []ProductRef, now time.Time) (map[ProductRef]Promotion, error)

	// ActivatePriceList flags the given list active and deactivates any other.
	ActivatePriceList(ctx context.Context, id string) error
	ListPriceLists(ctx context.Context) ([]PriceList, error)

	ListPromotions(ctx context.Context) ([]Promotion, error)
	// CreatePromotion stores the promotion together with the products it
	// covers.
	CreatePromotion(ctx context.Context, promo *Promotion, products []ProductRef) error
	DeletePromotion(ctx context.Context, id string) error
}
