package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode grants a flat discount to an entire cart, subject to a
// validity window, an activation flag, a usage cap and a minimum
// purchase threshold. TimesUsed is incremented exactly once per order
// that completes payment while carrying the code and never decremented.
type PromoCode struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	ValidFrom         time.Time       `json:"validFrom"`
	ValidUntil        time.Time       `json:"validUntil"`
	MaxUses           int             `json:"maxUses"` // 0 = unlimited
	TimesUsed         int             `json:"timesUsed"`
	IsActive          bool            `json:"isActive"`
	MinPurchaseAmount decimal.Decimal `json:"minPurchaseAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Exhausted reports whether the usage cap is spent.
func (p *PromoCode) Exhausted() bool {
	return p.MaxUses > 0 && p.TimesUsed >= p.MaxUses
}

type PromoCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
	GetByID(ctx context.Context, id string) (*PromoCode, error)
	Create(ctx context.Context, promo *PromoCode) error
	Update(ctx context.Context, promo *PromoCode) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]PromoCode, error)
	Count(ctx context.Context) (int64, error)

	// IncrementUsage bumps TimesUsed by one. Callers guard against
	// double-counting with the order's paid flag, not here.
	IncrementUsage(ctx context.Context, id string) error
}
