package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// CartUsecase owns the single open cart per customer and keeps its
// cached aggregates consistent: every mutating operation runs in one
// transaction and ends with a full recompute, so callers never see a
// cart whose totals disagree with its lines.
type CartUsecase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	promoRepo   domain.PromoCodeRepository
	pricing     *PricingUsecase
	txManager   domain.TransactionManager
	maxQuantity int
	now         func() time.Time
}

func NewCartUsecase(
	cartRepo domain.CartRepository,
	productRepo domain.ProductRepository,
	promoRepo domain.PromoCodeRepository,
	pricing *PricingUsecase,
	txManager domain.TransactionManager,
	maxQuantity int,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		promoRepo:   promoRepo,
		pricing:     pricing,
		txManager:   txManager,
		maxQuantity: maxQuantity,
		now:         time.Now,
	}
}

// GetMyCart returns the customer's open cart, creating one on first
// access.
func (uc *CartUsecase) GetMyCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := uc.getOrCreateOpenCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := uc.enrichItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// getOrCreateOpenCart resolves the lookup-then-create race through the
// partial unique index: a concurrent create loses with ErrOpenCartExists
// and re-fetches the winner's cart.
func (uc *CartUsecase) getOrCreateOpenCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := uc.cartRepo.GetOpenCartByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = &domain.Cart{
		ID:         utils.GenerateUUID(),
		CustomerID: customerID,
	}
	if err := uc.cartRepo.CreateCart(ctx, cart); err != nil {
		if errors.Is(err, domain.ErrOpenCartExists) {
			return uc.cartRepo.GetOpenCartByCustomer(ctx, customerID)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// AddToCart adds qty of the product, or increments the existing line.
func (uc *CartUsecase) AddToCart(ctx context.Context, customerID string, ref domain.ProductRef, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	if _, err := uc.productRepo.Resolve(ctx, ref); err != nil {
		return nil, fmt.Errorf("product %s: %w", ref, err)
	}

	var cart *domain.Cart
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = uc.getOrCreateOpenCart(txCtx, customerID)
		if err != nil {
			return err
		}
		if cart.InOrder {
			return domain.ErrCartClosed
		}

		item, err := uc.cartRepo.GetItemByRef(txCtx, cart.ID, ref)
		if err != nil {
			return err
		}

		newQty := qty
		if item != nil {
			newQty = item.Quantity + qty
		}
		if uc.maxQuantity > 0 && newQty > uc.maxQuantity {
			return fmt.Errorf("quantity exceeds the per-item limit of %d", uc.maxQuantity)
		}

		if item == nil {
			item = &domain.CartItem{
				ID:       utils.GenerateUUID(),
				CartID:   cart.ID,
				Product:  ref,
				Quantity: newQty,
			}
			if err := uc.cartRepo.InsertItem(txCtx, item); err != nil {
				return err
			}
		} else if err := uc.cartRepo.UpdateItemQuantity(txCtx, item.ID, newQty); err != nil {
			return err
		}

		return uc.recomputeTotals(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.enrichItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity pins a line to an absolute quantity; anything below 1
// deletes the line.
func (uc *CartUsecase) SetQuantity(ctx context.Context, customerID string, ref domain.ProductRef, qty int) (*domain.Cart, error) {
	return uc.mutateLine(ctx, customerID, ref, func(item *domain.CartItem) int {
		return qty
	})
}

// ChangeQuantity bumps a line by delta (typically ±1). A resulting
// quantity below 1 deletes the line rather than keeping a zero row.
func (uc *CartUsecase) ChangeQuantity(ctx context.Context, customerID string, ref domain.ProductRef, delta int) (*domain.Cart, error) {
	return uc.mutateLine(ctx, customerID, ref, func(item *domain.CartItem) int {
		return item.Quantity + delta
	})
}

// RemoveFromCart deletes the line unconditionally.
func (uc *CartUsecase) RemoveFromCart(ctx context.Context, customerID string, ref domain.ProductRef) (*domain.Cart, error) {
	return uc.mutateLine(ctx, customerID, ref, func(item *domain.CartItem) int {
		return 0
	})
}

func (uc *CartUsecase) mutateLine(ctx context.Context, customerID string, ref domain.ProductRef, nextQty func(*domain.CartItem) int) (*domain.Cart, error) {
	var cart *domain.Cart
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = uc.cartRepo.GetOpenCartByCustomer(txCtx, customerID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}
		if cart.InOrder {
			return domain.ErrCartClosed
		}

		item, err := uc.cartRepo.GetItemByRef(txCtx, cart.ID, ref)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		qty := nextQty(item)
		switch {
		case qty < 1:
			if err := uc.cartRepo.DeleteItem(txCtx, item.ID); err != nil {
				return err
			}
		default:
			if uc.maxQuantity > 0 && qty > uc.maxQuantity {
				return fmt.Errorf("quantity exceeds the per-item limit of %d", uc.maxQuantity)
			}
			if err := uc.cartRepo.UpdateItemQuantity(txCtx, item.ID, qty); err != nil {
				return err
			}
		}

		return uc.recomputeTotals(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.enrichItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart deletes every line and detaches any promo code.
func (uc *CartUsecase) ClearCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	var cart *domain.Cart
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = uc.cartRepo.GetOpenCartByCustomer(txCtx, customerID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}
		if cart.InOrder {
			return domain.ErrCartClosed
		}

		if err := uc.cartRepo.DeleteItems(txCtx, cart.ID); err != nil {
			return err
		}
		cart.AppliedPromo = nil
		return uc.recomputeTotals(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ApplyPromoResult reports the outcome of a promo application. A failed
// application is a normal answer, not an error: the cart stays as it was
// and Reason explains why.
type ApplyPromoResult struct {
	Applied    bool            `json:"applied"`
	Reason     string          `json:"reason,omitempty"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
	Cart       *domain.Cart    `json:"cart"`
}

// ApplyPromoCode checks the code against the cart's pre-promo,
// product-discounted subtotal and attaches it on success.
func (uc *CartUsecase) ApplyPromoCode(ctx context.Context, customerID, code string) (*ApplyPromoResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrPromoNotFound
	}

	var result *ApplyPromoResult
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		cart, err := uc.cartRepo.GetOpenCartByCustomer(txCtx, customerID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}
		if cart.InOrder {
			return domain.ErrCartClosed
		}

		promo, err := uc.promoRepo.GetByCode(txCtx, code)
		if err != nil {
			return err
		}

		// Subtotal before any promo: recompute with the promo detached,
		// so a previously applied code does not skew the threshold check.
		previousPromo := cart.AppliedPromo
		cart.AppliedPromo = nil
		if err := uc.recomputeTotals(txCtx, cart); err != nil {
			return err
		}

		ok, reason := CheckPromoApplicability(promo, cart.FinalPrice, uc.now())
		if !ok {
			// Restore whatever was applied before; the failed attempt
			// must leave the cart as it was.
			cart.AppliedPromo = previousPromo
			if err := uc.recomputeTotals(txCtx, cart); err != nil {
				return err
			}
			result = &ApplyPromoResult{Applied: false, Reason: reason, FinalPrice: cart.FinalPrice, Cart: cart}
			return nil
		}

		cart.AppliedPromo = &promo.ID
		if err := uc.recomputeTotals(txCtx, cart); err != nil {
			return err
		}
		result = &ApplyPromoResult{Applied: true, FinalPrice: cart.FinalPrice, Cart: cart}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := uc.enrichItems(ctx, result.Cart); err != nil {
		return nil, err
	}
	return result, nil
}

// RemovePromoCode detaches the applied code, if any.
func (uc *CartUsecase) RemovePromoCode(ctx context.Context, customerID string) (*domain.Cart, error) {
	var cart *domain.Cart
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = uc.cartRepo.GetOpenCartByCustomer(txCtx, customerID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}
		cart.AppliedPromo = nil
		return uc.recomputeTotals(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.enrichItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// recomputeTotals re-derives all cached aggregates from the lines and
// current catalog prices, persists each line's line_total, re-validates
// an attached promo against the fresh subtotal (detaching it silently
// when it no longer qualifies), and writes the aggregates. Must run
// inside the mutating transaction.
func (uc *CartUsecase) recomputeTotals(ctx context.Context, cart *domain.Cart) error {
	items, err := uc.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return err
	}

	refs := make([]domain.ProductRef, len(items))
	for i, item := range items {
		refs[i] = item.Product
	}
	quotes, err := uc.pricing.QuoteMany(ctx, refs)
	if err != nil {
		return err
	}

	totalItems := 0
	originalPrice := decimal.Zero
	productsPrice := decimal.Zero
	for i := range items {
		item := &items[i]
		quote := quotes[item.Product]
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := quote.DiscountedPrice.Mul(qty)

		if !lineTotal.Equal(item.LineTotal) {
			if err := uc.cartRepo.UpdateItemLineTotal(ctx, item.ID, lineTotal); err != nil {
				return err
			}
			item.LineTotal = lineTotal
		}

		totalItems += item.Quantity
		originalPrice = originalPrice.Add(quote.CurrentPrice.Mul(qty))
		productsPrice = productsPrice.Add(lineTotal)
	}

	finalPrice := productsPrice
	if cart.AppliedPromo != nil {
		promo, err := uc.promoRepo.GetByID(ctx, *cart.AppliedPromo)
		if err != nil && !errors.Is(err, domain.ErrPromoNotFound) {
			return err
		}
		ok := false
		if promo != nil {
			ok, _ = CheckPromoApplicability(promo, productsPrice, uc.now())
		}
		if ok {
			finalPrice = productsPrice.Sub(promo.DiscountAmount)
		} else {
			// Silent detach: the promo stopped qualifying (window closed,
			// cap spent, subtotal dropped below the threshold).
			logger.WithContext(ctx).Debug().
				Str("cart_id", cart.ID).
				Str("promo_id", *cart.AppliedPromo).
				Msg("promo code no longer applicable, detached")
			cart.AppliedPromo = nil
		}
	}
	if finalPrice.IsNegative() {
		finalPrice = decimal.Zero
	}

	cart.TotalItems = totalItems
	cart.OriginalPrice = originalPrice
	cart.FinalPrice = finalPrice
	cart.Items = items
	return uc.cartRepo.UpdateAggregates(ctx, cart)
}

// enrichItems fills display names from live product data for responses.
func (uc *CartUsecase) enrichItems(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || len(cart.Items) == 0 {
		return nil
	}
	refs := make([]domain.ProductRef, len(cart.Items))
	for i, item := range cart.Items {
		refs[i] = item.Product
	}
	products, err := uc.productRepo.ResolveMany(ctx, refs)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		if p, ok := products[cart.Items[i].Product]; ok {
			cart.Items[i].DisplayName = p.DisplayName()
		}
	}
	return nil
}
