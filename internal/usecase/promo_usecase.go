package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// CheckPromoApplicability decides whether a promo code may be applied
// to a cart with the given product-discounted subtotal. When it cannot,
// the returned reason is the FIRST failing check in this order:
// inactive, not yet valid, expired, usage cap, minimum purchase. The
// ordering is a user-messaging priority, keep it stable.
//
// Pure check: the usage counter is only consumed at fulfillment.
func CheckPromoApplicability(promo *domain.PromoCode, subtotal decimal.Decimal, now time.Time) (bool, string) {
	switch {
	case !promo.IsActive:
		return false, "promo code is not active"
	case now.Before(promo.ValidFrom):
		return false, "promo code is not valid yet"
	case now.After(promo.ValidUntil):
		return false, "promo code has expired"
	case promo.Exhausted():
		return false, "promo code usage cap exhausted"
	case subtotal.LessThan(promo.MinPurchaseAmount):
		return false, fmt.Sprintf("cart total must be at least %s to use this code", promo.MinPurchaseAmount.String())
	}
	return true, ""
}

// PromoUsecase handles admin promo-code management. The customer-facing
// apply/remove path lives on the cart.
type PromoUsecase struct {
	promoRepo domain.PromoCodeRepository
}

func NewPromoUsecase(promoRepo domain.PromoCodeRepository) *PromoUsecase {
	return &PromoUsecase{promoRepo: promoRepo}
}

// PromoCodeRequest is the admin input for creating or updating a code.
type PromoCodeRequest struct {
	Code              string          `json:"code"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	ValidFrom         time.Time       `json:"validFrom"`
	ValidUntil        time.Time       `json:"validUntil"`
	MaxUses           int             `json:"maxUses"`
	IsActive          bool            `json:"isActive"`
	MinPurchaseAmount decimal.Decimal `json:"minPurchaseAmount"`
}

func (r *PromoCodeRequest) validate() (string, error) {
	code := strings.ToUpper(strings.TrimSpace(r.Code))
	if code == "" {
		return "", fmt.Errorf("promo code is required")
	}
	if r.DiscountAmount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("discount amount must be greater than 0")
	}
	if r.MinPurchaseAmount.IsNegative() {
		return "", fmt.Errorf("minimum purchase amount cannot be negative")
	}
	if r.MaxUses < 0 {
		return "", fmt.Errorf("max uses cannot be negative")
	}
	if !r.ValidUntil.After(r.ValidFrom) {
		return "", fmt.Errorf("valid_until must be after valid_from")
	}
	return code, nil
}

func (uc *PromoUsecase) CreatePromoCode(ctx context.Context, req PromoCodeRequest) (*domain.PromoCode, error) {
	code, err := req.validate()
	if err != nil {
		return nil, err
	}

	if existing, _ := uc.promoRepo.GetByCode(ctx, code); existing != nil {
		return nil, fmt.Errorf("promo code '%s' already exists", code)
	}

	promo := &domain.PromoCode{
		ID:                utils.GenerateUUID(),
		Code:              code,
		DiscountAmount:    req.DiscountAmount,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		MaxUses:           req.MaxUses,
		IsActive:          req.IsActive,
		MinPurchaseAmount: req.MinPurchaseAmount,
	}
	if err := uc.promoRepo.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}
	return promo, nil
}

func (uc *PromoUsecase) UpdatePromoCode(ctx context.Context, id string, req PromoCodeRequest) error {
	code, err := req.validate()
	if err != nil {
		return err
	}

	existing, err := uc.promoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if code != existing.Code {
		if dup, _ := uc.promoRepo.GetByCode(ctx, code); dup != nil {
			return fmt.Errorf("promo code '%s' already exists", code)
		}
	}

	existing.Code = code
	existing.DiscountAmount = req.DiscountAmount
	existing.ValidFrom = req.ValidFrom
	existing.ValidUntil = req.ValidUntil
	existing.MaxUses = req.MaxUses
	existing.IsActive = req.IsActive
	existing.MinPurchaseAmount = req.MinPurchaseAmount
	return uc.promoRepo.Update(ctx, existing)
}

func (uc *PromoUsecase) GetPromoCode(ctx context.Context, id string) (*domain.PromoCode, error) {
	return uc.promoRepo.GetByID(ctx, id)
}

func (uc *PromoUsecase) DeletePromoCode(ctx context.Context, id string) error {
	if _, err := uc.promoRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.promoRepo.Delete(ctx, id)
}

func (uc *PromoUsecase) ListPromoCodes(ctx context.Context, limit, offset int) ([]domain.PromoCode, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	promos, err := uc.promoRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list promo codes: %w", err)
	}
	total, err := uc.promoRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count promo codes: %w", err)
	}
	return promos, total, nil
}
